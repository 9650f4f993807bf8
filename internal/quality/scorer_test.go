package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/content/fixtures"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

func materialContext() ScoreContext {
	return ContextFor(fixtures.GoodMaterial(), "description")
}

func TestScorers_AuthenticText(t *testing.T) {
	req := defaultRequirements(t)
	for _, s := range DefaultScorers() {
		t.Run(string(s.Dimension()), func(t *testing.T) {
			score, issues := s.Score(fixtures.AuthenticDescription, materialContext(), req)
			assert.Equal(t, s.Dimension(), score.Dimension)
			assert.Equal(t, "description", score.Field)
			assert.Equal(t, 100.0, score.Value)
			assert.Empty(t, issues)
		})
	}
}

func TestStructural(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	t.Run("sentence count and artifacts", func(t *testing.T) {
		score, issues := Structural{}.Score("This is **bold** text. Values are TBD. Done here.", ctx, req)
		assert.Equal(t, 50.0, score.Value)
		require.Len(t, issues, 3)
		assert.Equal(t, content.SeverityMajor, issues[0].Severity)
		assert.Equal(t, "structural.sentences", issues[0].Source)
		assert.Equal(t, content.SeverityMinor, issues[1].Severity)
		assert.Equal(t, content.SeverityMinor, issues[2].Severity)
	})

	t.Run("long line", func(t *testing.T) {
		score, issues := Structural{}.Score(strings.Repeat("a", 700), ctx, req)
		assert.Equal(t, 65.0, score.Value)
		assert.Len(t, issues, 2)
	})

	t.Run("artifact penalty is capped", func(t *testing.T) {
		score, _ := Structural{}.Score(strings.Repeat("Value TBD. ", 7), ctx, req)
		assert.Equal(t, 60.0, score.Value)
	})
}

func TestVoice(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	tests := []struct {
		name   string
		text   string
		want   float64
		issues int
	}{
		{"partial markers", "The data show a clear trend. By comparison, others lag.", 50, 0},
		{"hits capped per marker", "Measured once, measured twice, measured again.", 50, 0},
		{"mild contamination", "The data show it. By comparison, less. Measured twice, measured again. Think of it this way.", 75, 1},
		{"no markers", "Plain text without any voice.", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, issues := Voice{}.Score(tt.text, ctx, req)
			assert.InDelta(t, tt.want, score.Value, 1e-9)
			assert.Len(t, issues, tt.issues)
		})
	}

	t.Run("strong contamination", func(t *testing.T) {
		score, issues := Voice{}.Score(fixtures.ContaminatedDescription, ctx, req)
		assert.Equal(t, 0.0, score.Value)
		require.Len(t, issues, 1)
		assert.Equal(t, content.IssueVoice, issues[0].Category)
		assert.Contains(t, issues[0].Message, "field-engineer")
		assert.Equal(t, "voice.profiles.field-engineer.markers", issues[0].Source)
	})

	t.Run("unknown profile", func(t *testing.T) {
		unknown := ctx
		unknown.VoiceProfile = "ghostwriter"
		score, issues := Voice{}.Score(fixtures.AuthenticDescription, unknown, req)
		assert.Equal(t, 0.0, score.Value)
		require.Len(t, issues, 1)
		assert.Equal(t, content.SeverityMajor, issues[0].Severity)
	})
}

func TestSynthetic(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"boilerplate", "It is important to note that rust forms. In conclusion, clean it.", 70},
		{"precise decimals", "Density is 2.7000 g/cm3.", 90},
		{"repeated openers", "The beam moves. The plate heats. The rust lifts. The end.", 70},
		{"category cap", strings.Repeat("in conclusion ", 10) + "it works.", 60},
		{"openers below threshold", "The beam moves. The plate heats. Rust lifts.", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, issues := Synthetic{}.Score(tt.text, ctx, req)
			assert.InDelta(t, tt.want, score.Value, 1e-9)
			if tt.want < 100 {
				require.Len(t, issues, 1)
				assert.Equal(t, content.IssueSynthetic, issues[0].Category)
				assert.Equal(t, content.SeverityMinor, issues[0].Severity)
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestTechnical(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	tests := []struct {
		name   string
		text   string
		want   float64
		issues int
	}{
		{"matching claims", "A 500 W source at 1064 nm.", 100, 0},
		{"mismatched claim", "A 600 W source at 1064 nm.", 50, 1},
		{"within tolerance", "A 510W source at 1070 nm.", 100, 0},
		{"beyond claim tolerance", "A 500W source at 1080 nm.", 50, 1},
		{"no claims", "Reflective metals need care.", 100, 0},
		{"word boundaries", "Taken in 2024 When the X500W model ran 500 Wh.", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, issues := Technical{}.Score(tt.text, ctx, req)
			assert.InDelta(t, tt.want, score.Value, 1e-9)
			assert.Len(t, issues, tt.issues)
			for _, i := range issues {
				assert.Equal(t, content.SeverityMajor, i.Severity)
				assert.Equal(t, content.IssueTextQuality, i.Category)
			}
		})
	}

	t.Run("unverifiable claims excluded", func(t *testing.T) {
		compound := ContextFor(fixtures.GoodCompound(), "description")
		score, issues := Technical{}.Score("A 600 W source.", compound, req)
		assert.Equal(t, 100.0, score.Value)
		assert.Empty(t, issues)
	})

	t.Run("grouped thousands", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["laser_power"] = content.Num(1500)
		score, issues := Technical{}.Score("A 1,500 W source at 1064 nm.", ContextFor(rec, "description"), req)
		assert.Equal(t, 100.0, score.Value)
		assert.Empty(t, issues)

		score, issues = Technical{}.Score("A 1,600 W source at 1064 nm.", ContextFor(rec, "description"), req)
		assert.InDelta(t, 50.0, score.Value, 1e-9)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, `"1,600 W"`)
	})

	t.Run("proportional reduction", func(t *testing.T) {
		text := strings.Replace(fixtures.AuthenticDescription, "A 500 W", "A 600 W", 1)
		score, issues := Technical{}.Score(text, ctx, req)
		assert.InDelta(t, 200.0/3.0, score.Value, 1e-9)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "600 W")
	})
}

func TestExtractClaims(t *testing.T) {
	req := defaultRequirements(t)
	claims := ExtractClaims("Run 2.5 kW at 300 mm/s.", req.Technical)
	require.Len(t, claims, 2)
	assert.Equal(t, Claim{Text: "2.5 kW", Value: 2.5, Unit: "kW", Field: "laser_power_kw"}, claims[0])
	assert.Equal(t, "scan_speed", claims[1].Field)

	claims = ExtractClaims("A 1,500 W source, not 1,50 W.", req.Technical)
	require.Len(t, claims, 1)
	assert.Equal(t, Claim{Text: "1,500 W", Value: 1500, Unit: "W", Field: "laser_power"}, claims[0])
}

func TestLookupNumber(t *testing.T) {
	fields := fixtures.GoodMaterial().Fields
	v, ok := lookupNumber(fields, "laser_settings.spot_size")
	require.True(t, ok)
	assert.Equal(t, 0.1, v)
	_, ok = lookupNumber(fields, "name")
	assert.False(t, ok)
	_, ok = lookupNumber(fields, "name.first")
	assert.False(t, ok)
}

type panicScorer struct{}

func (panicScorer) Dimension() content.Dimension { return content.DimensionStructural }

func (panicScorer) Score(string, ScoreContext, *requirements.Config) (content.QualityScore, []content.Issue) {
	panic("boom")
}

func TestSafe(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	t.Run("recovers panics", func(t *testing.T) {
		score, issues := Safe(panicScorer{}).Score("text", ctx, req)
		assert.Equal(t, 0.0, score.Value)
		require.Len(t, issues, 1)
		assert.Equal(t, content.SeverityMajor, issues[0].Severity)
		assert.Equal(t, content.IssueTextQuality, issues[0].Category)
		assert.Contains(t, issues[0].Message, "boom")
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		score, issues := Safe(Voice{}).Score("ok \xff\xfe", ctx, req)
		assert.Equal(t, 0.0, score.Value)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "UTF-8")
	})

	t.Run("idempotent wrapping", func(t *testing.T) {
		s := Safe(Voice{})
		assert.Equal(t, s, Safe(s))
	})
}

func TestScoreBounds(t *testing.T) {
	req := defaultRequirements(t)
	ctx := materialContext()

	inputs := map[string]string{
		"empty":          "",
		"whitespace":     " \n\n\t ",
		"very long":      strings.Repeat("The data show a 500 W result. ", 20000),
		"terminators":    strings.Repeat(".!?", 5000),
		"control bytes":  "\x00\x01\x02\x03",
		"invalid utf8":   "\xff\xfe\xfd",
		"markdown flood": strings.Repeat("# **TBD** [x](y)\n", 2000),
		"huge numbers":   "1e308 W 99999999999999999999999 W 0 nm",
		"foreign voices": strings.Repeat("In practice, think of this means rule of thumb. ", 500),
	}
	for name, text := range inputs {
		for _, s := range DefaultScorers() {
			t.Run(name+"/"+string(s.Dimension()), func(t *testing.T) {
				score, issues := s.Score(text, ctx, req)
				assert.GreaterOrEqual(t, score.Value, 0.0)
				assert.LessOrEqual(t, score.Value, 100.0)
				for _, i := range issues {
					assert.NoError(t, i.Validate())
				}
			})
		}
	}
}
