package validation

import "github.com/Domenick1991/airbooking-modify/internal/domain"

// Errors is an ordered list of failed field rules.
type Errors []domain.FieldError

func (e *Errors) add(field, msg string) {
	if msg != "" {
		*e = append(*e, domain.FieldError{Field: field, Message: msg})
	}
}

func (e Errors) Empty() bool { return len(e) == 0 }

// First returns the first failed rule in evaluation order.
func (e Errors) First() (domain.FieldError, bool) {
	if len(e) == 0 {
		return domain.FieldError{}, false
	}
	return e[0], true
}

// Map keys the first message per field path, for per-field highlighting.
func (e Errors) Map() map[string]string {
	if len(e) == 0 {
		return nil
	}
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// Err converts the list into a domain.ValidationError, or nil when empty.
func (e Errors) Err() error {
	first, ok := e.First()
	if !ok {
		return nil
	}
	return domain.ValidationError{Field: first.Field, Msg: first.Message, Fields: e}
}
