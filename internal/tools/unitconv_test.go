package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

func convEntities(value any, from, to string) intent.Entities {
	return intent.Entities{"value": value, "from_unit": from, "to_unit": to}
}

func TestConvertTemperature(t *testing.T) {
	tool := NewUnitConversionTool(zap.NewNop().Sugar(), nil)

	res := tool.Execute(context.Background(), "convert_temperature", convEntities("25", "摄氏度", "华氏度"), "")
	assert.Equal(t, "conversion_result: 25 摄氏度 = 77 华氏度", res.String())

	res = tool.Execute(context.Background(), "convert_temperature", convEntities("32", "华氏度", "摄氏度"), "")
	assert.Equal(t, "conversion_result: 32 华氏度 = 0 摄氏度", res.String())

	res = tool.Execute(context.Background(), "convert_temperature", convEntities("0", "摄氏度", "开尔文"), "")
	assert.Equal(t, "conversion_result: 0 摄氏度 = 273.15 开尔文", res.String())
}

func TestConvertUnitLength(t *testing.T) {
	tool := NewUnitConversionTool(zap.NewNop().Sugar(), nil)

	res := tool.Execute(context.Background(), "convert_unit", convEntities("100", "千米", "米"), "")
	assert.Equal(t, "conversion_result: 100 千米 = 100000 米", res.String())

	res = tool.Execute(context.Background(), "convert_unit", convEntities("2", "公斤", "克"), "")
	assert.Equal(t, "conversion_result: 2 公斤 = 2000 克", res.String())
}

func TestConvertTemperatureViaGenericIntent(t *testing.T) {
	// 转换 25 摄氏度为华氏度 arrives as convert_unit; the unit names route it
	// to the temperature path
	tool := NewUnitConversionTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "convert_unit", convEntities("25", "摄氏度", "华氏度"), "")
	assert.Equal(t, "conversion_result: 25 摄氏度 = 77 华氏度", res.String())
}

func TestConvertIncompatibleUnits(t *testing.T) {
	tool := NewUnitConversionTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "convert_unit", convEntities("1", "千米", "公斤"), "")
	assert.True(t, res.Failed())
}

func TestConvertMissingParameters(t *testing.T) {
	tool := NewUnitConversionTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "convert_unit", intent.Entities{"value": "5"}, "")
	assert.Equal(t, intent.KindClarification, res.Kind)
}
