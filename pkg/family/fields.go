package family

// Field describes how one logical attribute is read from a member: the
// ordered key spellings that may hold it, the value used when none does,
// and whether an empty value ends the search or is skipped.
type Field struct {
	Name      string
	Aliases   []string
	Default   string
	SkipEmpty bool
}

// Logical fields, each with its German and English spellings.
var (
	FieldName        = Field{Name: "name", Aliases: []string{"Name", "name"}, Default: "?", SkipEmpty: true}
	FieldSecondNames = Field{Name: "second_names", Aliases: []string{"Zweitnamen", "second_names"}, SkipEmpty: true}
	FieldBirthDate   = Field{Name: "birth_date", Aliases: []string{"Geburtstag", "birth_date"}, Default: "?", SkipEmpty: true}
	FieldDeathDate   = Field{Name: "death_date", Aliases: []string{"Todestag", "death_date"}}
	FieldBirthPlace  = Field{Name: "birth_place", Aliases: []string{"Geburtsort", "birth_place", "birthplace"}, SkipEmpty: true}
	FieldDeathPlace  = Field{Name: "death_place", Aliases: []string{"Todesort", "death_place"}}
	FieldMarriage    = Field{Name: "marriage", Aliases: []string{"Hochzeit", "marriage"}}
	FieldOccupation  = Field{Name: "occupation", Aliases: []string{"Beruf", "occupation"}}
	FieldNote        = Field{Name: "note", Aliases: []string{"Notiz", "note"}}
	FieldImagePath   = Field{Name: "image_path", Aliases: []string{"image_path"}}
)

// Fields lists every logical field in display order.
var Fields = []Field{
	FieldName, FieldSecondNames, FieldBirthDate, FieldDeathDate, FieldBirthPlace,
	FieldDeathPlace, FieldMarriage, FieldOccupation, FieldNote, FieldImagePath,
}

// Resolve returns the field's value for m. A nil member yields the default.
func (f Field) Resolve(m *Member) string {
	if m == nil {
		return f.Default
	}
	for _, key := range f.Aliases {
		v, ok := m.Lookup(key)
		if !ok {
			continue
		}
		if f.SkipEmpty && v == "" {
			continue
		}
		return v
	}
	return f.Default
}
