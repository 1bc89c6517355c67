package services

import "math"

// Option is one selectable answer carrying a point value
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Question is one diagnostic question with its fixed option set
type Question struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	QuestionSw string   `json:"questionSw"`
	Type       string   `json:"type"`
	Options    []Option `json:"options"`
}

// ActionItem is one remediation entry in a diagnostic's action plan
type ActionItem struct {
	Title         string `json:"title"`
	TitleSw       string `json:"titleSw"`
	Description   string `json:"description"`
	DescriptionSw string `json:"descriptionSw"`
	Effort        string `json:"effort"`
	Impact        string `json:"impact"`
	PlaybookSlug  string `json:"playbookSlug"`
}

// DiagnosticQuestions holds the fixed question banks per domain
var DiagnosticQuestions = map[string][]Question{
	"cashflow": {
		{
			ID:         "cf1",
			Question:   "Do you track your business income and expenses regularly?",
			QuestionSw: "Je, unafuatilia mapato na matumizi ya biashara yako mara kwa mara?",
			Type:       "radio",
			Options: []Option{
				{Value: "daily", Label: "Daily / Kila siku", Score: 10},
				{Value: "weekly", Label: "Weekly / Kila wiki", Score: 7},
				{Value: "monthly", Label: "Monthly / Kila mwezi", Score: 4},
				{Value: "rarely", Label: "Rarely or never / Mara chache au kamwe", Score: 0},
			},
		},
		{
			ID:         "cf2",
			Question:   "Do you know your monthly profit margin?",
			QuestionSw: "Je, unajua faida yako ya kila mwezi?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes-exact", Label: "Yes, I track it precisely / Ndio, ninafuatilia kwa usahihi", Score: 10},
				{Value: "yes-estimate", Label: "Yes, rough estimate / Ndio, makadirio tu", Score: 5},
				{Value: "no", Label: "No / Hapana", Score: 0},
			},
		},
		{
			ID:         "cf3",
			Question:   "How often do you run out of cash to pay suppliers or staff?",
			QuestionSw: "Mara ngapi hukosa pesa kulipa wasambazaji au wafanyakazi?",
			Type:       "radio",
			Options: []Option{
				{Value: "never", Label: "Never / Kamwe", Score: 10},
				{Value: "rarely", Label: "Rarely (1-2 times/year) / Mara chache (1-2 mara kwa mwaka)", Score: 7},
				{Value: "sometimes", Label: "Sometimes (monthly) / Wakati mwingine (kila mwezi)", Score: 3},
				{Value: "often", Label: "Often (weekly) / Mara nyingi (kila wiki)", Score: 0},
			},
		},
		{
			ID:         "cf4",
			Question:   "Do you separate personal and business money?",
			QuestionSw: "Je, unatenganisha pesa za binafsi na za biashara?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes-separate", Label: "Yes, completely separate / Ndio, kabisa", Score: 10},
				{Value: "mostly", Label: "Mostly separate / Mara nyingi", Score: 5},
				{Value: "no", Label: "No, mixed together / Hapana, zimechanganyika", Score: 0},
			},
		},
		{
			ID:         "cf5",
			Question:   "Do you have a cash reserve for emergencies?",
			QuestionSw: "Je, una akiba ya pesa kwa dharura?",
			Type:       "radio",
			Options: []Option{
				{Value: "3months", Label: "3+ months expenses / Matumizi ya miezi 3+", Score: 10},
				{Value: "1month", Label: "1 month expenses / Matumizi ya mwezi 1", Score: 7},
				{Value: "some", Label: "Some savings / Akiba kidogo", Score: 3},
				{Value: "none", Label: "No reserve / Hakuna akiba", Score: 0},
			},
		},
	},
	"compliance": {
		{
			ID:         "co1",
			Question:   "Is your business registered with the relevant authorities?",
			QuestionSw: "Je, biashara yako imesajiliwa na mamlaka husika?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes-all", Label: "Yes, fully registered / Ndio, imesajiliwa kikamilifu", Score: 10},
				{Value: "partial", Label: "Partially registered / Imesajiliwa kiasi", Score: 5},
				{Value: "no", Label: "Not registered / Haijasajiliwa", Score: 0},
			},
		},
		{
			ID:         "co2",
			Question:   "Do you have a KRA PIN?",
			QuestionSw: "Je, una KRA PIN?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes", Label: "Yes / Ndio", Score: 10},
				{Value: "no", Label: "No / Hapana", Score: 0},
			},
		},
		{
			ID:         "co3",
			Question:   "Are you registered for eTIMS (electronic tax invoicing)?",
			QuestionSw: "Je, umesajiliwa kwa eTIMS (ankara za kodi za kielektroniki)?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes-using", Label: "Yes, and using it / Ndio, na ninatumia", Score: 10},
				{Value: "yes-not-using", Label: "Yes, but not using / Ndio, lakini situmii", Score: 5},
				{Value: "no", Label: "No / Hapana", Score: 0},
			},
		},
		{
			ID:         "co4",
			Question:   "Do you file tax returns on time?",
			QuestionSw: "Je, unawasilisha kodi kwa wakati?",
			Type:       "radio",
			Options: []Option{
				{Value: "always", Label: "Always / Kila wakati", Score: 10},
				{Value: "sometimes", Label: "Sometimes late / Wakati mwingine chelewa", Score: 5},
				{Value: "rarely", Label: "Rarely or never / Mara chache au kamwe", Score: 0},
			},
		},
		{
			ID:         "co5",
			Question:   "Do you have required county/municipal licenses?",
			QuestionSw: "Je, una leseni zinazohitajika za kaunti/manispaa?",
			Type:       "radio",
			Options: []Option{
				{Value: "yes-current", Label: "Yes, all current / Ndio, zote za sasa", Score: 10},
				{Value: "some", Label: "Some licenses / Leseni zingine", Score: 5},
				{Value: "no", Label: "No licenses / Hakuna leseni", Score: 0},
			},
		},
	},
}

// IsKnownDomain reports whether a diagnostic domain exists
func IsKnownDomain(domain string) bool {
	_, ok := DiagnosticQuestions[domain]
	return ok
}

// CalculateDiagnosticScore maps the chosen answers to a 0-100 score.
// Unanswered questions contribute nothing to the numerator but their maximum
// still counts toward the denominator, so missing answers depress the score.
func CalculateDiagnosticScore(domain string, responses map[string]string) int {
	questions, ok := DiagnosticQuestions[domain]
	if !ok {
		return 0
	}

	var totalScore, maxScore int
	for _, q := range questions {
		chosen := responses[q.ID]
		qMax := 0
		for _, opt := range q.Options {
			if opt.Value == chosen {
				totalScore += opt.Score
			}
			if opt.Score > qMax {
				qMax = opt.Score
			}
		}
		maxScore += qMax
	}

	if maxScore == 0 {
		return 0
	}
	return int(math.Round(float64(totalScore) / float64(maxScore) * 100))
}

// GenerateActionPlan emits remediation entries in fixed priority order.
// Specific answer values trigger specific entries; the list is not sorted by
// score.
func GenerateActionPlan(domain string, responses map[string]string, score int) []ActionItem {
	switch domain {
	case "cashflow":
		actions := []ActionItem{}

		if v, ok := responses["cf1"]; !ok || v == "rarely" {
			actions = append(actions, ActionItem{
				Title:         "Start Daily Income & Expense Tracking",
				TitleSw:       "Anza Kufuatilia Mapato na Matumizi Kila Siku",
				Description:   "Use a simple notebook or spreadsheet to record every transaction.",
				DescriptionSw: "Tumia daftari au spreadsheet ya rahisi kurekodi kila muamala.",
				Effort:        "low",
				Impact:        "high",
				PlaybookSlug:  "cashflow-basics",
			})
		}

		if responses["cf4"] == "no" {
			actions = append(actions, ActionItem{
				Title:         "Open a Separate Business Account",
				TitleSw:       "Fungua Akaunti Tofauti ya Biashara",
				Description:   "Separate your personal and business finances for clarity.",
				DescriptionSw: "Tenganisha fedha zako za binafsi na za biashara kwa uwazi.",
				Effort:        "medium",
				Impact:        "high",
				PlaybookSlug:  "business-banking",
			})
		}

		if v := responses["cf5"]; v == "none" || v == "some" {
			actions = append(actions, ActionItem{
				Title:         "Build an Emergency Fund",
				TitleSw:       "Jenga Mfuko wa Dharura",
				Description:   "Save 10% of profits monthly until you have 3 months of expenses.",
				DescriptionSw: "Weka akiba ya 10% ya faida kila mwezi hadi upate matumizi ya miezi 3.",
				Effort:        "medium",
				Impact:        "high",
				PlaybookSlug:  "emergency-fund",
			})
		}

		return actions

	case "compliance":
		actions := []ActionItem{}

		if responses["co2"] == "no" {
			actions = append(actions, ActionItem{
				Title:         "Register for KRA PIN",
				TitleSw:       "Sajili KRA PIN",
				Description:   "Apply online at iTax portal - takes 1-3 days.",
				DescriptionSw: "Omba kwenye wavuti ya iTax - inachukua siku 1-3.",
				Effort:        "low",
				Impact:        "critical",
				PlaybookSlug:  "kra-pin-registration",
			})
		}

		if v := responses["co3"]; v == "no" || v == "yes-not-using" {
			actions = append(actions, ActionItem{
				Title:         "Set Up eTIMS for Tax Invoicing",
				TitleSw:       "Weka eTIMS kwa Ankara za Kodi",
				Description:   "Register and configure your electronic tax invoicing system.",
				DescriptionSw: "Sajili na sanidi mfumo wako wa ankara za kodi za kielektroniki.",
				Effort:        "medium",
				Impact:        "critical",
				PlaybookSlug:  "etims-setup",
			})
		}

		if v := responses["co5"]; v == "no" || v == "some" {
			actions = append(actions, ActionItem{
				Title:         "Get County Business Permits",
				TitleSw:       "Pata Vibali vya Biashara vya Kaunti",
				Description:   "Visit your county offices to apply for required licenses.",
				DescriptionSw: "Tembelea ofisi za kaunti yako kuomba leseni zinazohitajika.",
				Effort:        "medium",
				Impact:        "high",
				PlaybookSlug:  "county-permits",
			})
		}

		return actions
	}

	return []ActionItem{}
}
