package transliteration_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/transliteration"
)

var (
	engineOnce sync.Once
	engine     *transliteration.Engine
	engineErr  error
)

func builtinEngine(t *testing.T) *transliteration.Engine {
	t.Helper()
	engineOnce.Do(func() {
		var tbl transliteration.Tables
		tbl, engineErr = tables.Load()
		if engineErr == nil {
			engine, engineErr = transliteration.LoadTables(tbl)
		}
	})
	require.NoError(t, engineErr)
	return engine
}

func TestConvertScenarios(t *testing.T) {
	e := builtinEngine(t)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slang greeting", "ela machan! supiri!!", "එල මචන්! සුපිරි!!"},
		{"short negation", "naee", "නෑ"},
		{"random capitalization", "MaMa kuBurata yanavaa", "මම කුඹුරට යනවා"},
		{"symbol noise", "mama!@#gedara^^^&gihin)((((***kama kannam", "මම ගෙදර ගිහින් කැම කන්නම්"},
		{"english pass-through", "thanks oyage help ekata", "thanks ඔයගෙ help එකට"},
		{"brand name", "mata WhatsApp ekak evanna puluvandha?", "මට WhatsApp එකක් එවන්න පුලුවන්ද?"},
		{"past negation", "mama iiyee gedhara giye naee", "මම ඊයේ ගෙදර ගියෙ නෑ"},
		{"notation capital", "api iilaGa sathiyee gedhara yamu", "අපි ඊලඟ සතියේ ගෙදර යමු"},
		{"compound sentence", "oya enavaanam mama balan innavaa", "ඔය එනවානම් මම බලන් ඉන්නවා"},
		{"literals", "mata Rs. 7500 oonee dhesaembar 31 11.59 PM venakota", "මට Rs. 7500 ඕනේ දෙසැම්බර් 31 11.59 PM වෙනකොට"},
		{"retroflex notation", "karuNaakaralaa vahanse, mata udhawwak karanna puLuvandhada?", "කරුණාකරලා වහන්සෙ, මට උදව්වක් කරන්න පුළුවන්දඩ?"},
		{"dictionary slang", "adoo!! vaedak baaragaththaanam eeka hariyata karapanko bQQ!!!", "අඩෝ!! වැඩක් බාරගත්තානම් ඒක හරියට කරපන්කො බං!!!"},
		{"place name", "siiyaa London yannadha hadhannee? nimaaliva balanna.", "සීයා London යන්නද හදන්නේ? නිමාලිව බලන්න."},
		{"uncertainty", "mata heta enna puluvan veyidha naedhdha dhanne naee", "මට හෙට එන්න පුලුවන් වෙයිද නැද්ද දන්නෙ නෑ"},
		{"glide after vowel", "oyaalai, eyaalai, okkoma yamu", "ඔයාලයි, එයාලයි, ඔක්කොම යමු"},
		{"question", "mama gedhara yanavaa. oyaa enavadha?", "මම ගෙදර යනවා. ඔයා එනවද?"},
		{"correct sentence", "mama gedhara yanavaa", "මම ගෙදර යනවා"},
		{"long vowel sign", "mata eeka karanna baee.", "මට ඒක කරන්න බෑ."},
		{"trip", "api trip eka Kandy valata yamudha.", "අපි trip එක Kandy වලට යමුද."},
		{"title case", "Meka ayin karala balanna", "මෙක අයින් කරල බලන්න"},
		{"emotion", "mata eekata hari sathutuyi.", "මට ඒකට හරි සතුටුයි."},
		{"ability", "mata swim karanna puluvan", "මට swim කරන්න පුලුවන්"},
		{"suggestion", "api heta udhemma naegitalaa vaedakaroth ikmanata ivara karaganna puluvan", "අපි හෙට උදෙම්ම නැගිටලා වැඩකරොත් ඉක්මනට ඉවර කරගන්න පුලුවන්"},
		{"comparison", "meka kalin project ekata vadaa lesi ikmanata ivara karaganna puluvan.", "මෙක කලින් project එකට වඩා ලෙසි ඉක්මනට ඉවර කරගන්න පුලුවන්."},
		{"typo tolerance", "mama gedhara yanava kaeema gnna passe ennam", "මම ගෙදර යනව කෑම ග්න්න පස්සෙ එන්නම්"},
		{"acronyms", "NIC eka gena enna. ASAP kiyala kiyannam. Thanks!", "NIC එක ගෙන එන්න. ASAP කියල කියන්නම්. Thanks!"},
		{"shouting", "HARI HARI", "හරි හරි"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Convert(tt.input, transliteration.Sinhala))
		})
	}
}

func TestConvertNewsWords(t *testing.T) {
	e := builtinEngine(t)
	tests := map[string]string{
		"dhitvaa":      "දිට්ඨව",
		"suLi":         "සුළි",
		"kuNaatuva":    "කුණාටුව",
		"gQQvathura":   "ගංවතුර",
		"naayayaeem":   "නායයෑම්",
		"heethuven":    "හේතුවෙන්",
		"sQQvarDhana":  "සංවර්ධන",
		"aDhikaariya":  "අධිකාරිය",
		"vinaashayata": "විනාශයට",
		"pramaaNaya":   "ප්‍රමාණය",
		"kiloomiitar":  "කිලෝමීටර්",
		"pravaahana":   "ප්‍රවාහන",
		"amaathYA":     "අමාත්‍ය",
		"sandahan":     "සඳහන්",
		"430k":         "430k",
	}
	for input, want := range tests {
		assert.Equal(t, want, e.Convert(input, transliteration.Sinhala), "Convert(%q)", input)
	}
}

func TestConvertTamil(t *testing.T) {
	e := builtinEngine(t)
	tests := []struct {
		input string
		want  string
	}{
		{"vanakkam", "வணக்கம்"},
		{"naan", "நான்"},
		{"kadai", "கடை"},
		{"thamizh", "தமிழ்"},
		{"amma thanks", "அம்மா thanks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Convert(tt.input, transliteration.Tamil), "Convert(%q)", tt.input)
	}
}

func TestConvertIsIdempotentOnTargetScript(t *testing.T) {
	e := builtinEngine(t)
	for _, input := range []string{
		"ela machan! supiri!!",
		"thanks oyage help ekata",
		"mata Rs. 7500 oonee dhesaembar 31 11.59 PM venakota",
		"mamamama",
		"මමමම ගෙදර",
	} {
		once := e.Convert(input, transliteration.Sinhala)
		assert.Equal(t, once, e.Convert(once, transliteration.Sinhala))
	}
}

func TestConvertKeepsPassThroughTokens(t *testing.T) {
	e := builtinEngine(t)
	input := "machan, mata meeting ekak thiyenne Zoom eke. WhatsApp message ekak dhaapan."
	out := e.Convert(input, transliteration.Sinhala)

	last := -1
	for _, word := range []string{"meeting", "Zoom", "WhatsApp", "message"} {
		idx := strings.Index(out, word)
		require.GreaterOrEqual(t, idx, 0, "%q missing from %q", word, out)
		assert.Greater(t, idx, last, "%q out of order", word)
		last = idx
	}
}

func TestConvertLeavesNativeScriptRunsAlone(t *testing.T) {
	e := builtinEngine(t)
	assert.Equal(t, "මමමම ගෙදර", e.Convert("මමමම ගෙදර", transliteration.Sinhala))
	assert.Equal(t, "ககககக வணக்கம்", e.Convert("ககககக வணக்கம்", transliteration.Tamil))
}

func TestConvertRepeatCollapseConverges(t *testing.T) {
	e := builtinEngine(t)
	assert.Equal(t,
		e.Convert("oya geda dha yanne", transliteration.Sinhala),
		e.Convert("oyaaaaaaa gedaaaaaa dhaaaaa yanneeee", transliteration.Sinhala))
	assert.Equal(t,
		e.Convert("oya", transliteration.Sinhala),
		e.Convert("oyaaaaaaa", transliteration.Sinhala))
}

func TestConvertPreservesStructure(t *testing.T) {
	e := builtinEngine(t)
	input := "mama gedhara yanavaa.\noyaa enavadha?\r\n\nhari, hari! ok..."
	out := e.Convert(input, transliteration.Sinhala)

	assert.Equal(t, strings.Count(input, "\n"), strings.Count(out, "\n"))
	assert.Equal(t, strings.Count(input, "\r"), strings.Count(out, "\r"))
	for _, p := range []string{".", ",", "!", "?"} {
		assert.Equal(t, strings.Count(input, p), strings.Count(out, p), "count of %q", p)
	}
}

func TestConvertConcurrent(t *testing.T) {
	e := builtinEngine(t)
	want := e.Convert("ela machan! supiri!!", transliteration.Sinhala)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, want, e.Convert("ela machan! supiri!!", transliteration.Sinhala))
			}
		}()
	}
	wg.Wait()
}
