package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

// recordingSink captures spoken lines for assertions.
type recordingSink struct {
	lines []string
}

func (s *recordingSink) Say(text string) { s.lines = append(s.lines, text) }

func TestCalculatorEvaluates(t *testing.T) {
	calc := NewCalculatorTool(zap.NewNop().Sugar(), nil)

	tests := []struct {
		expr string
		want string
	}{
		{"2+3*4", "calculation_result: 14"},
		{"(2+3)*4", "calculation_result: 20"},
		{"10/4", "calculation_result: 2.5"},
		{"3×7", "calculation_result: 21"},
		{"10÷2", "calculation_result: 5"},
		{"5加3", "calculation_result: 8"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := calc.Execute(context.Background(), "calculate", intent.Entities{"expression": tt.expr}, "")
			assert.Equal(t, intent.KindOK, res.Kind)
			assert.Equal(t, tt.want, res.String())
		})
	}
}

func TestCalculatorMissingExpression(t *testing.T) {
	sink := &recordingSink{}
	calc := NewCalculatorTool(zap.NewNop().Sugar(), sink)

	res := calc.Execute(context.Background(), "calculate", intent.Entities{}, "计算")
	assert.Equal(t, intent.KindClarification, res.Kind)
	assert.Len(t, sink.lines, 1)
}

func TestCalculatorBadExpression(t *testing.T) {
	calc := NewCalculatorTool(zap.NewNop().Sugar(), nil)
	res := calc.Execute(context.Background(), "calculate", intent.Entities{"expression": "2++**3"}, "")
	assert.True(t, res.Failed())
}

func TestCalculatorPercentage(t *testing.T) {
	calc := NewCalculatorTool(zap.NewNop().Sugar(), nil)

	tests := []struct {
		name     string
		entities intent.Entities
		want     string
	}{
		{"of", intent.Entities{"percentage": 20, "value1": 150}, "percentage_result: 30"},
		{"of is the default operation", intent.Entities{"operation": "", "percentage": 50, "value1": 8}, "percentage_result: 4"},
		{"increase", intent.Entities{"operation": "increase", "value1": 100, "percentage": 15}, "percentage_increase_result: 115"},
		{"decrease", intent.Entities{"operation": "decrease", "value1": 200, "percentage": 25}, "percentage_decrease_result: 150"},
		{"ratio", intent.Entities{"operation": "ratio", "value1": 30, "value2": 120}, "percentage_ratio_result: 25.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calc.Execute(context.Background(), "calculate_percentage", tt.entities, "")
			assert.Equal(t, intent.KindOK, res.Kind)
			assert.Equal(t, tt.want, res.String())
		})
	}
}

func TestCalculatorPercentageRatioDivisionByZero(t *testing.T) {
	calc := NewCalculatorTool(zap.NewNop().Sugar(), nil)
	res := calc.Execute(context.Background(), "calculate_percentage",
		intent.Entities{"operation": "ratio", "value1": 10, "value2": 0}, "")
	assert.True(t, res.Failed())
}

func TestCalculatorPercentageParametersMissing(t *testing.T) {
	sink := &recordingSink{}
	calc := NewCalculatorTool(zap.NewNop().Sugar(), sink)
	res := calc.Execute(context.Background(), "calculate_percentage", intent.Entities{}, "")
	assert.Equal(t, intent.KindClarification, res.Kind)
	assert.Len(t, sink.lines, 1)
}
