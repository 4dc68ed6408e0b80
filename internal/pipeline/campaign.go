package pipeline

import "regexp"

// campaignPatterns maps fixed context patterns to a campaign type. Detection
// is pure pattern matching over the user's free-text context; the model is
// never asked to classify.
var campaignPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"launch", regexp.MustCompile(`(?i)\b(launch|go.?live|announce|new release|release day)\b`)},
	{"cart_recovery", regexp.MustCompile(`(?i)\b(abandoned cart|cart recovery|left (it|items?) in (the|their) cart|checkout drop)\b`)},
	{"re_engagement", regexp.MustCompile(`(?i)\b(win.?back|re.?engage|lapsed|inactive (users|subscribers|customers)|haven't opened)\b`)},
	{"nurture", regexp.MustCompile(`(?i)\b(nurture|drip|onboarding sequence|welcome (series|sequence)|educate (leads|prospects))\b`)},
	{"newsletter", regexp.MustCompile(`(?i)\b(newsletter|weekly digest|monthly (update|roundup))\b`)},
}

// DetectCampaignType matches freeText against the fixed campaign patterns and
// returns the first hit, or "" when none applies.
func DetectCampaignType(freeText string) string {
	for _, c := range campaignPatterns {
		if c.pattern.MatchString(freeText) {
			return c.name
		}
	}
	return ""
}
