package fetch

import (
	"net/url"
	"strings"
)

// Platform names an applicant tracking system whose pages need specific selectors.
type Platform string

// Known platforms
const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformAshby           Platform = "ashby"
	PlatformUnknown         Platform = "unknown"
)

type platformSpec struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platforms = []platformSpec{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id-wrapper", "#usa_self_id_section"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"myworkdayjobs.com", "workday.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		noise:    []string{"[data-automation-id='applyButton']"},
	},
	{
		platform: PlatformSmartRecruiters,
		hosts:    []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']"},
		noise:    []string{".job-apply"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='_descriptionText']", "main"},
	},
}

// commonNoise covers application forms, EEO blocks and consent banners on any board
var commonNoise = []string{
	"form",
	".application-form",
	"[data-testid='application-form']",
	".eeo-statement",
	".voluntary-disclosure",
	".social-share",
	".cookie-banner",
	".cookie-consent",
}

// DetectPlatform identifies the platform from the URL host.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range platforms {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p.platform
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the description selectors for platform, most specific first.
func ContentSelectors(platform Platform) []string {
	if spec, ok := lookup(platform); ok {
		return append(append([]string{}, spec.content...), genericContent...)
	}
	return append([]string{}, genericContent...)
}

// NoiseSelectors returns the elements to strip before extraction on platform.
func NoiseSelectors(platform Platform) []string {
	out := append([]string{}, commonNoise...)
	if spec, ok := lookup(platform); ok {
		out = append(out, spec.noise...)
	}
	return out
}

var genericContent = []string{
	".job-description",
	"#job-description",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
}

func lookup(platform Platform) (platformSpec, bool) {
	for _, p := range platforms {
		if p.platform == platform {
			return p, true
		}
	}
	return platformSpec{}, false
}
