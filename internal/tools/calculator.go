package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

// CalculatorTool evaluates arithmetic expressions.
type CalculatorTool struct {
	Base
}

func NewCalculatorTool(log *zap.SugaredLogger, speak speech.Sink) *CalculatorTool {
	return &CalculatorTool{Base: NewBase(log, speak)}
}

func (t *CalculatorTool) Name() string { return "calculator" }

func (t *CalculatorTool) Description() string {
	return "Evaluates arithmetic expressions"
}

func (t *CalculatorTool) SupportedIntents() []string {
	return []string{"calculate", "calculate_percentage"}
}

func (t *CalculatorTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	if intentName == "calculate_percentage" {
		return t.percentage(entities)
	}

	expr, ok := entities.String("expression")
	if !ok || expr == "" {
		t.Say("您想计算什么？")
		return intent.Clarify("expression_missing")
	}

	sanitized := sanitizeExpression(expr)
	evaluable, err := govaluate.NewEvaluableExpression(sanitized)
	if err != nil {
		t.Say("这个算式我看不懂。")
		return intent.Errorf("invalid_expression: %s", expr).Spoken()
	}
	value, err := evaluable.Evaluate(nil)
	if err != nil {
		t.Say("这个算式算不出来。")
		return intent.Errorf("evaluation_failed: %s", expr).Spoken()
	}
	result, ok := value.(float64)
	if !ok {
		return intent.Errorf("evaluation_failed: non-numeric result")
	}

	rendered := formatNumber(result)
	t.Say(fmt.Sprintf("结果是%s。", rendered))
	return intent.Okf("calculation_result: %s", rendered)
}

func (t *CalculatorTool) percentage(entities intent.Entities) intent.Result {
	operation, ok := entities.String("operation")
	if !ok || operation == "" {
		operation = "of"
	}
	value1, ok1 := entities.Float("value1")
	value2, ok2 := entities.Float("value2")
	percent, okP := entities.Float("percentage")

	var result float64
	switch {
	case operation == "of" && okP && ok1:
		// multiply before dividing to keep round values exact
		result = value1 * percent / 100
		t.Say(fmt.Sprintf("%s的%s%%是%s。", formatNumber(value1), formatNumber(percent), formatNumber(result)))
		return intent.Okf("percentage_result: %s", formatNumber(result))
	case operation == "increase" && ok1 && okP:
		result = value1 + value1*percent/100
		t.Say(fmt.Sprintf("%s增加%s%%是%s。", formatNumber(value1), formatNumber(percent), formatNumber(result)))
		return intent.Okf("percentage_increase_result: %s", formatNumber(result))
	case operation == "decrease" && ok1 && okP:
		result = value1 - value1*percent/100
		t.Say(fmt.Sprintf("%s减少%s%%是%s。", formatNumber(value1), formatNumber(percent), formatNumber(result)))
		return intent.Okf("percentage_decrease_result: %s", formatNumber(result))
	case operation == "ratio" && ok1 && ok2:
		if value2 == 0 {
			t.Say("不能除以零。")
			return intent.Errorf("percentage_division_by_zero").Spoken()
		}
		result = value1 / value2 * 100
		t.Say(fmt.Sprintf("%s是%s的%.2f%%。", formatNumber(value1), formatNumber(value2), result))
		return intent.Okf("percentage_ratio_result: %.2f%%", result)
	}

	t.Say("请提供正确的百分比计算参数。")
	return intent.Clarify("percentage_parameters_missing")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var expressionReplacer = strings.NewReplacer(
	"×", "*", "÷", "/", "－", "-", "＋", "+",
	"（", "(", "）", ")",
	"加", "+", "减", "-", "乘以", "*", "乘", "*", "除以", "/",
	"点", ".", " ", "",
)

// sanitizeExpression maps spoken and full-width operators onto their ASCII
// forms before evaluation.
func sanitizeExpression(expr string) string {
	return expressionReplacer.Replace(expr)
}
