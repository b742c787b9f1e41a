package model

import (
	"fmt"
	"sort"
	"strings"
)

// FieldClass decides which normalization rule applies to a field.
type FieldClass int

const (
	ClassText FieldClass = iota
	ClassNumeric
	ClassCode
	ClassResidenceCode
)

func (c FieldClass) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	case ClassCode:
		return "code"
	case ClassResidenceCode:
		return "residence_code"
	default:
		return "text"
	}
}

// Code widths.
const (
	CodeWidth          = 2
	ResidenceCodeWidth = 5
)

// DefaultResidenceCodeField is the residence municipality (DIVIPOLA) code.
const DefaultResidenceCodeField = "codMunicipioResidencia"

// DefaultNumericFields serialize as integers or decimals.
var DefaultNumericFields = []string{
	"consecutivo", "codServicio", "vrServicio", "valorPagoModerador",
	"concentracionMedicamento", "unidadMedida", "unidadMinDispensa",
	"cantidadMedicamento", "diasTratamiento", "vrUnitMedicamento",
	"idMIPRES", "cantidadOS", "vrUnitOS",
}

// DefaultCodeFields serialize as zero-padded strings of at least CodeWidth digits.
var DefaultCodeFields = []string{
	"tipoUsuario", "viaIngresoServicioSalud", "modalidadGrupoServicioTecSal",
	"grupoServicios", "finalidadTecnologiaSalud", "conceptoRecaudo",
	"tipoMedicamento", "tipoOS", "codZonaTerritorialResidencia",
	"codPaisResidencia", "codPaisOrigen",
}

// Classification maps field names to their FieldClass. Every name belongs to
// at most one class; anything unlisted is free text.
type Classification struct {
	classes map[string]FieldClass
}

// NewClassification builds a classification and rejects field names listed
// under more than one class.
func NewClassification(numeric, codes []string, residence string) (*Classification, error) {
	c := &Classification{classes: make(map[string]FieldClass)}
	add := func(name string, class FieldClass) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("empty field name in %s fields", class)
		}
		if prev, ok := c.classes[name]; ok && prev != class {
			return fmt.Errorf("field %q listed as both %s and %s", name, prev, class)
		}
		c.classes[name] = class
		return nil
	}
	if residence != "" {
		if err := add(residence, ClassResidenceCode); err != nil {
			return nil, err
		}
	}
	for _, name := range numeric {
		if err := add(name, ClassNumeric); err != nil {
			return nil, err
		}
	}
	for _, name := range codes {
		if err := add(name, ClassCode); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultClassification returns the RIPS field classes.
func DefaultClassification() *Classification {
	c, err := NewClassification(DefaultNumericFields, DefaultCodeFields, DefaultResidenceCodeField)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the class for a field name.
func (c *Classification) Classify(field string) FieldClass {
	if c == nil {
		return ClassText
	}
	return c.classes[field]
}

// Fields returns the sorted field names registered under class.
func (c *Classification) Fields(class FieldClass) []string {
	var out []string
	for name, cl := range c.classes {
		if cl == class {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
