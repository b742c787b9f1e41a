package model

import "strings"

// Category is one of the recognized RIPS service record types.
type Category struct {
	Name  string // canonical JSON key under "servicios", e.g. "otrosServicios"
	Sheet string // workbook sheet name, e.g. "OtrosServicios"
}

// PatientsSheet is the workbook sheet holding one row per patient.
const PatientsSheet = "Usuarios"

// PatientsTable is the dataset key of the patients table.
const PatientsTable = "usuarios"

// AllCategories lists the known service categories in workbook order.
var AllCategories = []Category{
	{Name: "consultas", Sheet: "Consultas"},
	{Name: "procedimientos", Sheet: "Procedimientos"},
	{Name: "hospitalizacion", Sheet: "Hospitalizacion"},
	{Name: "hospitalizaciones", Sheet: "Hospitalizaciones"},
	{Name: "urgencias", Sheet: "Urgencias"},
	{Name: "recienNacidos", Sheet: "RecienNacidos"},
	{Name: "medicamentos", Sheet: "Medicamentos"},
	{Name: "otrosServicios", Sheet: "OtrosServicios"},
}

// CategoryByName matches name case-insensitively against the known categories.
func CategoryByName(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range AllCategories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryNames returns the canonical names for all categories.
func CategoryNames() []string {
	names := make([]string, len(AllCategories))
	for i, c := range AllCategories {
		names[i] = c.Name
	}
	return names
}

// IsPatientsTable reports whether a sheet or table name denotes the patients table.
func IsPatientsTable(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), PatientsTable)
}
