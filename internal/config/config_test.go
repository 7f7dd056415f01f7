package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLedgerConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := LedgerConfig{
		SignupBonus:        500,
		FreeCoinsAmt:       100,
		FreeCoinsAfter:     24 * time.Hour,
		UpgradeRedeemCoins: 200,
	}

	tests := []struct {
		name    string
		mutate  func(*LedgerConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*LedgerConfig) {}},
		{name: "zero_signup_bonus_allowed", mutate: func(c *LedgerConfig) { c.SignupBonus = 0 }},
		{name: "zero_cooldown_allowed", mutate: func(c *LedgerConfig) { c.FreeCoinsAfter = 0 }},
		{name: "negative_signup_bonus", mutate: func(c *LedgerConfig) { c.SignupBonus = -1 }, wantErr: true},
		{name: "zero_free_coins", mutate: func(c *LedgerConfig) { c.FreeCoinsAmt = 0 }, wantErr: true},
		{name: "negative_cooldown", mutate: func(c *LedgerConfig) { c.FreeCoinsAfter = -time.Second }, wantErr: true},
		{name: "zero_upgrade_coins", mutate: func(c *LedgerConfig) { c.UpgradeRedeemCoins = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
