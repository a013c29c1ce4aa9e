package profile

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got %v", err)
	}
}

func TestConfigValidateRejectsBadLayers(t *testing.T) {
	c := DefaultConfig().WithLayers(0, 30)
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero HLayer")
	}
	c = DefaultConfig().WithLayers(200, 0)
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero NLayer")
	}
}

func TestConfigValidateRejectsBadRange(t *testing.T) {
	c := DefaultConfig().WithRange(-1, 25000)
	if err := c.Validate(); err == nil {
		t.Error("expected error for negative RangeMin")
	}
	c = DefaultConfig().WithRange(5000, 5000)
	if err := c.Validate(); err == nil {
		t.Error("expected error for RangeMax <= RangeMin")
	}
}

func TestConfigValidateRejectsBadWavelength(t *testing.T) {
	c := DefaultConfig()
	c.RadarWavelengthCM = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-positive wavelength")
	}
}

func TestWithSettersLeaveOriginalUntouched(t *testing.T) {
	base := DefaultConfig()
	derived := base.WithFitVrad(false).WithStaticClutter(true).WithAzimuth(10, 20)

	if base.FitVrad == derived.FitVrad {
		t.Error("WithFitVrad should not mutate the receiver's copy semantics")
	}
	if !base.FitVrad {
		t.Error("base config's FitVrad should remain the default true")
	}
	if derived.FitVrad {
		t.Error("derived config should have FitVrad disabled")
	}
	if !derived.UseStaticClutterData {
		t.Error("derived config should have static clutter enabled")
	}
	if derived.AzimMin != 10 || derived.AzimMax != 20 {
		t.Errorf("derived azimuth bounds = [%v, %v], want [10, 20]", derived.AzimMin, derived.AzimMax)
	}
}

func TestToEngineParamsComputesDBZFactor(t *testing.T) {
	c := DefaultConfig()
	params, err := c.ToEngineParams()
	if err != nil {
		t.Fatalf("ToEngineParams: %v", err)
	}
	if params.DBZFactor <= 0 {
		t.Errorf("expected a positive dBZFactor, got %v", params.DBZFactor)
	}
	if params.HLayer != c.HLayer || params.NLayer != c.NLayer {
		t.Error("ToEngineParams should carry layer settings through unchanged")
	}
}

func TestToEngineParamsPropagatesValidationError(t *testing.T) {
	c := DefaultConfig().WithLayers(-1, 30)
	if _, err := c.ToEngineParams(); err == nil {
		t.Error("expected ToEngineParams to reject an invalid config")
	}
}
