package anomaly

// Config carries detection windows and thresholds. The values mirror the
// tuning the detectors were calibrated with; none of them are assumed
// optimal, so they stay configurable.
type Config struct {
	PriceWindow          int     `yaml:"price_window"`           // samples between compared prices (~1h)
	PriceChangeThreshold float64 `yaml:"price_change_threshold"` // flag candidate at |change| >= this
	PriceSevereThreshold float64 `yaml:"price_severe_threshold"` // high severity above this

	OutlierWindow int     `yaml:"outlier_window"` // confirmation pass lookback
	Contamination float64 `yaml:"contamination"`  // expected outlier share

	VolumeWindow      int     `yaml:"volume_window"`
	VolumeRatio       float64 `yaml:"volume_ratio"`        // flag at current/mean >= this
	VolumeSevereRatio float64 `yaml:"volume_severe_ratio"` // high severity above this
	VolumeZThreshold  float64 `yaml:"volume_z_threshold"`

	SentimentHistory int     `yaml:"sentiment_history"`
	SentimentMinimum int     `yaml:"sentiment_minimum"`
	SentimentDelta   float64 `yaml:"sentiment_delta"`
	SentimentSevere  float64 `yaml:"sentiment_severe"`

	WhaleMinUSD       float64 `yaml:"whale_min_usd"`
	OffHoursStart     int     `yaml:"off_hours_start"`
	OffHoursEnd       int     `yaml:"off_hours_end"`
	RepeatWindowSecs  int     `yaml:"repeat_window_secs"`
	RepeatCount       int     `yaml:"repeat_count"`
	SuspicionFlag     float64 `yaml:"suspicion_flag"`
	SuspicionSevere   float64 `yaml:"suspicion_severe"`
	OffHoursWeight    float64 `yaml:"off_hours_weight"`
	RepeatWeight      float64 `yaml:"repeat_weight"`
	DestinationWeight float64 `yaml:"destination_weight"`

	PatternWindow   int     `yaml:"pattern_window"`
	PatternMinimum  int     `yaml:"pattern_minimum"`
	PatternLeg      int     `yaml:"pattern_leg"` // samples before a peak/trough for leg measurement
	PumpRise        float64 `yaml:"pump_rise"`
	PumpDrop        float64 `yaml:"pump_drop"`
	CrashDrop       float64 `yaml:"crash_drop"`
	RallyWindow     int     `yaml:"rally_window"`
	RallyIncreases  int     `yaml:"rally_increases"`
	RiskWindow      int     `yaml:"risk_window"`
	RiskHighLevel   float64 `yaml:"risk_high_level"`
	RiskMediumLevel float64 `yaml:"risk_medium_level"`
}

func DefaultConfig() Config {
	return Config{
		PriceWindow:          60,
		PriceChangeThreshold: 0.15,
		PriceSevereThreshold: 0.30,

		OutlierWindow: 120,
		Contamination: 0.10,

		VolumeWindow:      60,
		VolumeRatio:       3.0,
		VolumeSevereRatio: 5.0,
		VolumeZThreshold:  3.0,

		SentimentHistory: 100,
		SentimentMinimum: 10,
		SentimentDelta:   0.5,
		SentimentSevere:  0.7,

		WhaleMinUSD:       1_000_000,
		OffHoursStart:     2,
		OffHoursEnd:       6,
		RepeatWindowSecs:  3600,
		RepeatCount:       3,
		SuspicionFlag:     0.5,
		SuspicionSevere:   0.7,
		OffHoursWeight:    0.3,
		RepeatWeight:      0.4,
		DestinationWeight: 0.3,

		PatternWindow:   240,
		PatternMinimum:  60,
		PatternLeg:      30,
		PumpRise:        0.30,
		PumpDrop:        0.20,
		CrashDrop:       0.20,
		RallyWindow:     30,
		RallyIncreases:  20,
		RiskWindow:      60,
		RiskHighLevel:   0.7,
		RiskMediumLevel: 0.4,
	}
}
