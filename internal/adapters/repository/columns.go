package repository

import (
	"strings"

	"github.com/okian/prodboard/internal/domain/model"
)

type field int

const (
	fieldSerial field = iota
	fieldDuration
	fieldOperator
	fieldDate
	fieldTime
	fieldStatus
	fieldCount
)

// headerAliases maps normalized header text to record fields. The line
// stations write Spanish headers; exports from other tools use English.
var headerAliases = map[string]field{
	"serial":   fieldSerial,
	"duration": fieldDuration,
	"duracion": fieldDuration,
	"duración": fieldDuration,
	"operator": fieldOperator,
	"operador": fieldOperator,
	"date":     fieldDate,
	"fecha":    fieldDate,
	"time":     fieldTime,
	"hora":     fieldTime,
	"status":   fieldStatus,
	"estado":   fieldStatus,
}

// storeHeader is the header row written by Save.
var storeHeader = []string{"Serial", "Duracion", "Operador", "Fecha", "Hora", "Estado"}

// columnMap holds the source column index of each field, or -1.
type columnMap [fieldCount]int

func mapHeader(header []string) columnMap {
	var m columnMap
	for i := range m {
		m[i] = -1
	}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if f, ok := headerAliases[h]; ok && m[f] < 0 {
			m[f] = i
		}
	}
	return m
}

// found reports whether at least one known column was present.
func (m columnMap) found() bool {
	for _, i := range m {
		if i >= 0 {
			return true
		}
	}
	return false
}

// record builds a RawRecord from a row. Short rows and missing columns yield
// empty text for the affected fields.
func (m columnMap) record(row []string) model.RawRecord {
	get := func(f field) string {
		i := m[f]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return model.RawRecord{
		Serial:   get(fieldSerial),
		Duration: get(fieldDuration),
		Operator: get(fieldOperator),
		Date:     get(fieldDate),
		Time:     get(fieldTime),
		Status:   get(fieldStatus),
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func recordRow(r model.RawRecord) []string {
	return []string{r.Serial, r.Duration, r.Operator, r.Date, r.Time, r.Status}
}
