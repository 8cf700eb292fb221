package service

import (
	"time"

	"fisiogest/internal/apierror"
)

// diasSemana indexes time.Weekday (Sunday = 0) into the Spanish day names
// stored on every PagoPersonal. The table must not change: it is part of the
// ledger's natural key vocabulary.
var diasSemana = [7]string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

// Periodo is the payroll bucketing of a calendar date.
type Periodo struct {
	Anio         int
	Mes          int
	SemanaDelMes int
	DiaSemana    string
}

// ResolverPeriodo derives the payroll period of fecha using UTC calendar
// fields. SemanaDelMes is a fixed 7-day bucketing from the 1st of the month
// (día 1–7 → semana 1, … día 29–31 → semana 5); it is NOT ISO-week aligned.
func ResolverPeriodo(fecha time.Time) Periodo {
	f := fecha.UTC()
	semana := (f.Day() + 6) / 7 // ceil(día/7)
	if semana > 5 {
		semana = 5
	}
	return Periodo{
		Anio:         f.Year(),
		Mes:          int(f.Month()),
		SemanaDelMes: semana,
		DiaSemana:    diasSemana[int(f.Weekday())],
	}
}

// ParseFecha parses a date-only "YYYY-MM-DD" string directly in UTC. Going
// through a local-timezone constructor here would shift the calendar day for
// zones west of UTC, breaking the ledger's natural key.
func ParseFecha(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, apierror.Validacionf("fecha inválida: %q (se espera YYYY-MM-DD)", s)
	}
	return t, nil
}

// DiaUTC truncates t to its UTC calendar day.
func DiaUTC(t time.Time) time.Time {
	f := t.UTC()
	return time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
}

// EsDiaSemanaValido reports whether nombre is one of the seven table entries.
func EsDiaSemanaValido(nombre string) bool {
	for _, d := range diasSemana {
		if d == nombre {
			return true
		}
	}
	return false
}
