package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
	"github.com/addy-assistant/addy/internal/speech"
)

// WeatherTool queries an OpenWeatherMap-compatible API for current weather,
// forecasts and air quality.
type WeatherTool struct {
	Base
	cfg    config.WeatherConfig
	client *http.Client
}

func NewWeatherTool(cfg config.WeatherConfig, log *zap.SugaredLogger, speak speech.Sink) *WeatherTool {
	return &WeatherTool{
		Base:   NewBase(log, speak),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (t *WeatherTool) Name() string { return "weather" }

func (t *WeatherTool) Description() string {
	return "Reports current weather, forecasts and air quality for a location"
}

func (t *WeatherTool) SupportedIntents() []string {
	return []string{"get_weather", "get_weather_forecast", "get_air_quality"}
}

func (t *WeatherTool) IntentSchemas() map[string]llm.Schema {
	location := llm.Property{Type: "string", Description: "City name, defaults to the configured location"}
	schema := llm.Schema{Properties: map[string]llm.Property{"location": location}}
	return map[string]llm.Schema{
		"get_weather":          schema,
		"get_weather_forecast": schema,
		"get_air_quality":      schema,
	}
}

func (t *WeatherTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	if t.cfg.APIKey == "" {
		t.Say("天气功能还没有配置。")
		return intent.Errorf("weather_api_key_missing").Spoken()
	}
	location, _ := entities.String("location")
	if location == "" {
		location = t.cfg.DefaultLocation
	}

	switch intentName {
	case "get_weather":
		return t.currentWeather(ctx, location)
	case "get_weather_forecast":
		return t.forecast(ctx, location)
	case "get_air_quality":
		return t.airQuality(ctx, location)
	}
	return intent.UnsupportedIntent(intentName)
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

type airQualityResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

func (t *WeatherTool) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", t.cfg.APIKey)
	endpoint := fmt.Sprintf("%s%s?%s", t.cfg.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func cityParams(location string) url.Values {
	return url.Values{
		"q":     {location},
		"units": {"metric"},
		"lang":  {"zh_cn"},
	}
}

func (t *WeatherTool) currentWeather(ctx context.Context, location string) intent.Result {
	var data weatherResponse
	if err := t.get(ctx, "/weather", cityParams(location), &data); err != nil {
		t.Log().Warnw("weather lookup failed", "location", location, "error", err)
		t.Say("暂时查不到天气信息。")
		return intent.Errorf("weather_lookup_failed: %s", location).Spoken()
	}
	desc := "未知"
	if len(data.Weather) > 0 {
		desc = data.Weather[0].Description
	}
	t.Say(fmt.Sprintf("%s现在%s，气温%.0f度，湿度百分之%d。",
		location, desc, data.Main.Temp, data.Main.Humidity))
	return intent.Okf("weather: %s %s %.1f°C humidity %d%%",
		location, desc, data.Main.Temp, data.Main.Humidity)
}

func (t *WeatherTool) forecast(ctx context.Context, location string) intent.Result {
	var data forecastResponse
	if err := t.get(ctx, "/forecast", cityParams(location), &data); err != nil {
		t.Log().Warnw("forecast lookup failed", "location", location, "error", err)
		t.Say("暂时查不到天气预报。")
		return intent.Errorf("forecast_lookup_failed: %s", location).Spoken()
	}
	if len(data.List) == 0 {
		return intent.Errorf("forecast_lookup_failed: empty forecast")
	}

	// one entry per 3 hours; sample every 8th for a daily view
	summary := ""
	for i := 0; i < len(data.List) && i < 24; i += 8 {
		entry := data.List[i]
		desc := ""
		if len(entry.Weather) > 0 {
			desc = entry.Weather[0].Description
		}
		if summary != "" {
			summary += "; "
		}
		summary += fmt.Sprintf("%s %s %.0f°C", entry.DtTxt, desc, entry.Main.Temp)
	}
	t.Say(fmt.Sprintf("已查到%s未来几天的天气预报。", location))
	return intent.Okf("forecast: %s %s", location, summary)
}

var aqiLabels = map[int]string{
	1: "优", 2: "良", 3: "轻度污染", 4: "中度污染", 5: "重度污染",
}

func (t *WeatherTool) airQuality(ctx context.Context, location string) intent.Result {
	// air_pollution keys on coordinates, resolved through a current-weather call
	var current weatherResponse
	if err := t.get(ctx, "/weather", cityParams(location), &current); err != nil {
		t.Say("暂时查不到空气质量。")
		return intent.Errorf("air_quality_lookup_failed: %s", location).Spoken()
	}

	params := url.Values{
		"lat": {fmt.Sprintf("%f", current.Coord.Lat)},
		"lon": {fmt.Sprintf("%f", current.Coord.Lon)},
	}
	var data airQualityResponse
	if err := t.get(ctx, "/air_pollution", params, &data); err != nil || len(data.List) == 0 {
		t.Say("暂时查不到空气质量。")
		return intent.Errorf("air_quality_lookup_failed: %s", location).Spoken()
	}

	aqi := data.List[0].Main.AQI
	label, ok := aqiLabels[aqi]
	if !ok {
		label = "未知"
	}
	t.Say(fmt.Sprintf("%s的空气质量是%s。", location, label))
	return intent.Okf("air_quality: %s aqi=%d (%s)", location, aqi, label)
}
