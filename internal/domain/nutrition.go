package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Nutrient is a key of the closed set of tracked macro/micronutrients.
type Nutrient string

const (
	Calories  Nutrient = "calories"
	Protein   Nutrient = "protein"
	Carbs     Nutrient = "carbs"
	Fat       Nutrient = "fat"
	Fiber     Nutrient = "fiber"
	Sugar     Nutrient = "sugar"
	VitaminC  Nutrient = "vitaminC"
	VitaminD  Nutrient = "vitaminD"
	Iron      Nutrient = "iron"
	Calcium   Nutrient = "calcium"
	Omega3    Nutrient = "omega3"
	Potassium Nutrient = "potassium"
)

var knownNutrients = map[Nutrient]bool{
	Calories: true, Protein: true, Carbs: true, Fat: true, Fiber: true, Sugar: true,
	VitaminC: true, VitaminD: true, Iron: true, Calcium: true, Omega3: true, Potassium: true,
}

// Valid reports whether n is a tracked nutrient key.
func (n Nutrient) Valid() bool {
	return knownNutrients[n]
}

// Nutrition maps nutrient keys to non-negative amounts. Missing keys read as 0.
type Nutrition map[Nutrient]float64

// Get returns the amount for n, or 0 when absent.
func (n Nutrition) Get(key Nutrient) float64 {
	return n[key]
}

// ParseNutrition converts a loosely typed nutrient mapping, as decoded from
// JSON, DynamoDB or a model response, into Nutrition. Every value is converted
// to float64 here so analytics never mix numeric representations.
func ParseNutrition(raw map[string]any) (Nutrition, error) {
	out := make(Nutrition, len(raw))
	for k, v := range raw {
		key := Nutrient(k)
		if !key.Valid() {
			return nil, &InvalidRecordError{Field: "nutrition." + k, Reason: "unknown nutrient"}
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, &InvalidRecordError{Field: "nutrition." + k, Reason: err.Error()}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return nil, &InvalidRecordError{Field: "nutrition." + k, Reason: fmt.Sprintf("amount %v out of range", f)}
		}
		out[key] = f
	}
	return out, nil
}

// UnmarshalJSON decodes nutrition through ParseNutrition.
func (n *Nutrition) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return &InvalidRecordError{Field: "nutrition", Reason: err.Error()}
	}
	parsed, err := ParseNutrition(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

type float64er interface {
	Float64() (float64, error)
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		return f, nil
	case float64er:
		// json.Number and DynamoDB decimal numbers.
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not numeric: %v", t)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}
