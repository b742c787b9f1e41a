package parquetio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gyeh/ripsconv/internal/model"
)

var errNoValue = errors.New("cell has no value")

// cellText renders v so that decodeCell restores it exactly.
func cellText(v model.Value) string {
	switch v.Kind() {
	case model.KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case model.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	}
	return v.Text()
}

func decodeCell(kind model.Kind, raw *string) (model.Value, error) {
	if raw == nil {
		return model.Null(), errNoValue
	}
	s := *raw
	switch kind {
	case model.KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Null(), fmt.Errorf("int cell: %w", err)
		}
		return model.Int(n), nil
	case model.KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Null(), fmt.Errorf("float cell: %w", err)
		}
		return model.Float(f), nil
	case model.KindString:
		return model.String(s), nil
	case model.KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return model.Null(), fmt.Errorf("bool cell: %w", err)
		}
		return model.Bool(b), nil
	case model.KindTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return model.Null(), fmt.Errorf("time cell: %w", err)
		}
		return model.Time(t), nil
	case model.KindArray, model.KindObject:
		var v model.Value
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return model.Null(), fmt.Errorf("%s cell: %w", kind, err)
		}
		if v.Kind() != kind {
			return model.Null(), fmt.Errorf("cell holds %s, want %s", v.Kind(), kind)
		}
		return v, nil
	}
	return model.Null(), fmt.Errorf("unsupported kind %s", kind)
}
