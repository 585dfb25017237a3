// Package textnorm normaliza nombres capturados por usuarios (mercancías, bodegas).
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name colapsa espacios, compone a NFC y capitaliza cada palabra según reglas del español.
func Name(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Spanish).String(norm.NFC.String(s))
}

// Key clave de comparación: minúsculas y sin tildes ("Café  Pergamino" -> "cafe pergamino").
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.Join(strings.Fields(s), " "))
	if err != nil {
		out = s
	}
	return cases.Lower(language.Spanish).String(out)
}
