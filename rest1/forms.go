package rest1

import "strings"

// Field is one name/value pair of a ticket form. Names starting with
// "CF_" address custom fields and are sent as `CF.{Name}`. Fields with
// several values (Requestors, Cc, ...) are joined with ", " on the
// wire.
type Field struct {
	Name   string
	Values []string
}

// F builds a form field.
func F(name string, values ...string) Field {
	return Field{Name: name, Values: values}
}

// encodeTicketFields renders fields into the `content` payload of a
// ticket POST. Multiline values become indented continuation lines, so
// a value survives a round-trip through the response parser unchanged.
func encodeTicketFields(fields []Field) string {
	var lines []string
	for _, field := range fields {
		name := field.Name
		if strings.HasPrefix(name, "CF_") {
			name = "CF.{" + strings.TrimPrefix(name, "CF_") + "}"
		}
		value := strings.Join(field.Values, ", ")
		// A trailing newline does not open an empty continuation line.
		value = strings.TrimSuffix(value, "\n")
		valueLines := strings.Split(value, "\n")
		lines = append(lines, name+": "+valueLines[0])
		for _, cont := range valueLines[1:] {
			lines = append(lines, " "+cont)
		}
	}
	return strings.Join(lines, "\n")
}
