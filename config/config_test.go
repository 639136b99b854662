package config_test

import (
	"testing"

	"github.com/Zeegomo/stream-ciphers/config"
)

func TestValidatePowerOfTwo(t *testing.T) {
	tt := map[string]struct {
		cores   int
		wantErr bool
	}{
		"one":         {cores: 1, wantErr: false},
		"two":         {cores: 2, wantErr: false},
		"four":        {cores: 4, wantErr: false},
		"eight":       {cores: 8, wantErr: false},
		"zero":        {cores: 0, wantErr: true},
		"negative":    {cores: -2, wantErr: true},
		"three":       {cores: 3, wantErr: true},
		"above-max":   {cores: 16, wantErr: true},
		"six-not-pow": {cores: 6, wantErr: true},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Cores: tc.cores}
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("cores=%d: want error, got nil", tc.cores)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("cores=%d: want no error, got %v", tc.cores, err)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() is not valid: %v", err)
	}
	if cfg.Cores != config.DefaultCores {
		t.Errorf("want Cores=%d, got %d", config.DefaultCores, cfg.Cores)
	}
}
