package notification

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/hapiedu/hapi/core"
)

func newValidate() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func validInput() UpdatePreferenceInput {
	return UpdatePreferenceInput{
		InAppEnabled:   true,
		EmailEnabled:   true,
		EmailFrequency: FrequencyImmediate,
	}
}

func TestUpdatePreferenceInput_Validate(t *testing.T) {
	validate := newValidate()

	tests := []struct {
		name    string
		mutate  func(in *UpdatePreferenceInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *UpdatePreferenceInput) {}},
		{
			name:    "missing frequency",
			mutate:  func(in *UpdatePreferenceInput) { in.EmailFrequency = "" },
			wantErr: true,
		},
		{
			name:    "unknown frequency",
			mutate:  func(in *UpdatePreferenceInput) { in.EmailFrequency = "hourly" },
			wantErr: true,
		},
		{
			name: "quiet hours with valid clocks",
			mutate: func(in *UpdatePreferenceInput) {
				in.QuietHoursEnabled = true
				in.QuietHoursStart = "09:30"
				in.QuietHoursEnd = "15:00"
			},
		},
		{
			name: "quiet hours enabled without bounds",
			mutate: func(in *UpdatePreferenceInput) {
				in.QuietHoursEnabled = true
			},
			wantErr: true,
		},
		{
			name: "malformed clock",
			mutate: func(in *UpdatePreferenceInput) {
				in.QuietHoursStart = "25:00"
			},
			wantErr: true,
		},
		{
			name: "clock without minutes",
			mutate: func(in *UpdatePreferenceInput) {
				in.QuietHoursEnd = "9pm"
			},
			wantErr: true,
		},
		{
			name: "overnight window is accepted as data",
			mutate: func(in *UpdatePreferenceInput) {
				in.QuietHoursEnabled = true
				in.QuietHoursStart = "22:00"
				in.QuietHoursEnd = "08:00"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestUpdatePreferenceInput_Apply(t *testing.T) {
	pref := DefaultPreference("u1")
	in := validInput()
	in.EmailFrequency = FrequencyDaily
	in.NotifyMedium = true
	in.PushEnabled = true

	got := in.Apply(pref)
	if got.EmailFrequency != FrequencyDaily {
		t.Errorf("EmailFrequency = %v, want %v", got.EmailFrequency, FrequencyDaily)
	}
	if !got.PushEnabled {
		t.Error("PushEnabled = false, want true")
	}
	if got.NotifyCritical {
		t.Error("NotifyCritical = true, want false (unset toggles clear)")
	}
	// empty clocks keep the stored window
	if got.QuietHoursStart != "22:00" || got.QuietHoursEnd != "08:00" {
		t.Errorf("quiet hours = %s-%s, want 22:00-08:00 preserved", got.QuietHoursStart, got.QuietHoursEnd)
	}
}
