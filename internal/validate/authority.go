package validate

import (
	"strings"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
)

// AuthorityClassifier classifies catalog sources into authority tiers
type AuthorityClassifier struct {
	domainMap    map[string]model.AuthorityTier
	primaryMap   map[string]bool
	secondaryMap map[string]bool
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		domainMap:    make(map[string]model.AuthorityTier),
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
	}

	// Explicit mappings win over the domain lists
	for domain, tier := range config.DomainMap {
		classifier.domainMap[normalizeDomain(domain)] = model.ParseAuthorityTier(tier)
	}

	for _, domain := range config.PrimaryDomains {
		classifier.primaryMap[normalizeDomain(domain)] = true
	}

	for _, domain := range config.SecondaryDomains {
		classifier.secondaryMap[normalizeDomain(domain)] = true
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	host := extract.Host(rawURL)
	if host == "" {
		return model.TierUnknown
	}

	if tier, ok := a.domainMap[host]; ok && tier != model.TierUnknown {
		return tier
	}

	// Exact host or any subdomain of a listed domain (e.g. ir.example.gov under example.gov)
	if matchesDomain(host, a.primaryMap) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondaryMap) {
		return model.TierSecondary
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".int") ||
		strings.Contains(host, ".gov.") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
}
