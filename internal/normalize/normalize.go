package normalize

import (
	"github.com/gyeh/ripsconv/internal/model"
)

// Sink collects field-level issues. Normalization never fails on a field;
// a Sink only makes the leniency visible.
type Sink interface {
	Report(field string, raw model.Value, reason string)
}

// Normalizer applies the RIPS field rules to tabular rows before they are
// nested back into JSON.
type Normalizer struct {
	classes *model.Classification
}

// New returns a Normalizer. A nil classification selects the defaults.
func New(classes *model.Classification) *Normalizer {
	if classes == nil {
		classes = model.DefaultClassification()
	}
	return &Normalizer{classes: classes}
}

// Record normalizes every field of rec into a new record with the same keys.
// sink may be nil.
func (n *Normalizer) Record(rec *model.Record, sink Sink) *model.Record {
	out := model.NewRecord()
	for _, key := range rec.Keys() {
		out.Set(key, n.Field(key, rec.Value(key), sink))
	}
	return out
}

// Field normalizes one value according to the class of its field name.
func (n *Normalizer) Field(key string, raw model.Value, sink Sink) model.Value {
	if raw.IsMissing() {
		return model.Null()
	}
	switch n.classes.Classify(key) {
	case model.ClassResidenceCode:
		digits, stripped := cleanCode(codeText(raw))
		code := FixedCode(digits, model.ResidenceCodeWidth)
		switch {
		case code == nil && digits != "":
			report(sink, key, raw, "residence code longer than 5 digits")
		case code == nil && !isBlank(raw):
			report(sink, key, raw, "no digits in residence code")
		case stripped:
			report(sink, key, raw, "non-digit characters removed")
		}
		return strPtrValue(code)
	case model.ClassNumeric:
		v, ok := numeric(raw)
		if !ok && !isBlank(raw) {
			report(sink, key, raw, "not a number")
		}
		return v
	case model.ClassCode:
		digits, stripped := cleanCode(codeText(raw))
		code := Code(digits, model.CodeWidth)
		if code == nil && !isBlank(raw) {
			report(sink, key, raw, "no digits in code")
		} else if stripped {
			report(sink, key, raw, "non-digit characters removed")
		}
		return strPtrValue(code)
	default:
		return model.String(Text(raw))
	}
}

func numeric(raw model.Value) (model.Value, bool) {
	switch raw.Kind() {
	case model.KindInt:
		return raw, true
	case model.KindFloat:
		return fromFloat(raw.Float())
	case model.KindBool:
		if raw.Bool() {
			return model.Int(1), true
		}
		return model.Int(0), true
	case model.KindString:
		return Number(raw.Str())
	default:
		return model.Null(), false
	}
}

// codeText renders numeric cells without exponent so 7.0 reads as "7".
func codeText(raw model.Value) string {
	if raw.Kind() == model.KindFloat {
		if v, ok := fromFloat(raw.Float()); ok {
			return v.Text()
		}
	}
	return raw.Text()
}

func isBlank(raw model.Value) bool {
	return raw.Kind() == model.KindString && Text(raw) == ""
}

func strPtrValue(s *string) model.Value {
	if s == nil {
		return model.Null()
	}
	return model.String(*s)
}

func report(sink Sink, key string, raw model.Value, reason string) {
	if sink != nil {
		sink.Report(key, raw, reason)
	}
}
