package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/profile"
	"github.com/motorlot/recoengine/recoerrors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile profile.UserProfile
		wantErr bool
	}{
		{
			name: "valid profile",
			profile: profile.UserProfile{
				Budget:      profile.Budget{Min: 5000, Max: 15000},
				Preferences: profile.Preferences{Brands: []string{"Toyota"}, MinYear: 2018, MaxDistance: 50},
				Purpose:     profile.PurposeFamily,
			},
		},
		{
			name:    "empty profile is valid",
			profile: profile.UserProfile{},
		},
		{
			name: "negative min",
			profile: profile.UserProfile{
				Budget: profile.Budget{Min: -1, Max: 100},
			},
			wantErr: true,
		},
		{
			name: "negative max",
			profile: profile.UserProfile{
				Budget: profile.Budget{Min: 0, Max: -1},
			},
			wantErr: true,
		},
		{
			name: "min greater than max",
			profile: profile.UserProfile{
				Budget: profile.Budget{Min: 100, Max: 50},
			},
			wantErr: true,
		},
		{
			name: "negative min year",
			profile: profile.UserProfile{
				Preferences: profile.Preferences{MinYear: -1},
			},
			wantErr: true,
		},
		{
			name: "negative max distance",
			profile: profile.UserProfile{
				Preferences: profile.Preferences{MaxDistance: -1},
			},
			wantErr: true,
		},
		{
			name: "unrecognized purpose",
			profile: profile.UserProfile{
				Purpose: "unknown",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				require.Error(t, err)
				_, ok := recoerrors.AsValidationError(err)
				assert.True(t, ok, "expected a *ValidationError")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExtraFieldsAreOpaque(t *testing.T) {
	p := profile.UserProfile{Extra: map[string]any{"loyaltyTier": "gold"}}
	assert.NoError(t, p.Validate())
	assert.Equal(t, "gold", p.Extra["loyaltyTier"])
}
