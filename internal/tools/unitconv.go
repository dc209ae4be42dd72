package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

// UnitConversionTool converts between temperature scales and common length
// and weight units.
type UnitConversionTool struct {
	Base
}

func NewUnitConversionTool(log *zap.SugaredLogger, speak speech.Sink) *UnitConversionTool {
	return &UnitConversionTool{Base: NewBase(log, speak)}
}

func (t *UnitConversionTool) Name() string { return "unit_conversion" }

func (t *UnitConversionTool) Description() string {
	return "Converts temperatures, lengths and weights between units"
}

func (t *UnitConversionTool) SupportedIntents() []string {
	return []string{"convert_unit", "convert_temperature"}
}

func (t *UnitConversionTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	value, okV := entities.Float("value")
	from, okF := entities.String("from_unit")
	to, okT := entities.String("to_unit")
	if !okV || !okF || !okT || from == "" || to == "" {
		t.Say("请告诉我数值和要转换的单位。")
		return intent.Clarify("conversion_parameters_missing")
	}

	var (
		result float64
		err    error
	)
	if intentName == "convert_temperature" || isTemperatureUnit(from) {
		result, err = convertTemperature(value, from, to)
	} else {
		result, err = convertLinear(value, from, to)
	}
	if err != nil {
		t.Say("我不会转换这个单位。")
		return intent.Errorf("conversion_failed: %s to %s", from, to).Spoken()
	}

	rendered := strconv.FormatFloat(result, 'f', -1, 64)
	t.Say(fmt.Sprintf("%s%s等于%s%s。",
		strconv.FormatFloat(value, 'f', -1, 64), from, rendered, to))
	return intent.Okf("conversion_result: %s %s = %s %s", strconv.FormatFloat(value, 'f', -1, 64), from, rendered, to)
}

func isTemperatureUnit(unit string) bool {
	switch canonicalTemperature(unit) {
	case "celsius", "fahrenheit", "kelvin":
		return true
	}
	return false
}

func canonicalTemperature(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "摄氏度", "celsius", "c", "°c":
		return "celsius"
	case "华氏度", "fahrenheit", "f", "°f":
		return "fahrenheit"
	case "开尔文", "开氏度", "kelvin", "k":
		return "kelvin"
	}
	return ""
}

func convertTemperature(value float64, from, to string) (float64, error) {
	cf, ct := canonicalTemperature(from), canonicalTemperature(to)
	if cf == "" || ct == "" {
		return 0, fmt.Errorf("unknown temperature unit %q or %q", from, to)
	}

	var celsius float64
	switch cf {
	case "celsius":
		celsius = value
	case "fahrenheit":
		celsius = (value - 32) * 5 / 9
	case "kelvin":
		celsius = value - 273.15
	}

	switch ct {
	case "celsius":
		return celsius, nil
	case "fahrenheit":
		return celsius*9/5 + 32, nil
	case "kelvin":
		return celsius + 273.15, nil
	}
	return 0, fmt.Errorf("unknown temperature unit %q", to)
}

// linearUnits maps a unit name to its size in the base unit of its family
// (meters for length, grams for weight).
var linearUnits = map[string]struct {
	family string
	factor float64
}{
	"毫米": {"length", 0.001}, "厘米": {"length", 0.01}, "米": {"length", 1},
	"千米": {"length", 1000}, "公里": {"length", 1000},
	"英寸": {"length", 0.0254}, "英尺": {"length", 0.3048}, "英里": {"length", 1609.344},
	"meter": {"length", 1}, "km": {"length", 1000}, "cm": {"length", 0.01}, "mm": {"length", 0.001},
	"inch": {"length", 0.0254}, "foot": {"length", 0.3048}, "mile": {"length", 1609.344},

	"克": {"weight", 1}, "千克": {"weight", 1000}, "公斤": {"weight", 1000},
	"斤": {"weight", 500}, "磅": {"weight", 453.592}, "盎司": {"weight", 28.3495}, "吨": {"weight", 1e6},
	"gram": {"weight", 1}, "kg": {"weight", 1000}, "pound": {"weight", 453.592}, "ounce": {"weight", 28.3495},
}

func convertLinear(value float64, from, to string) (float64, error) {
	fu, okF := linearUnits[strings.ToLower(strings.TrimSpace(from))]
	tu, okT := linearUnits[strings.ToLower(strings.TrimSpace(to))]
	if !okF || !okT {
		return 0, fmt.Errorf("unknown unit %q or %q", from, to)
	}
	if fu.family != tu.family {
		return 0, fmt.Errorf("incompatible units %q and %q", from, to)
	}
	return value * fu.factor / tu.factor, nil
}
