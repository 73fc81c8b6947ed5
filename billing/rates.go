package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tennis_club_backend/models"
)

// RateNotFoundNote is written on a line item whose rate could not be resolved.
const RateNotFoundNote = "rate not found — please set manually"

// Resolution is the rate picked for a session and the tier that picked it.
type Resolution struct {
	RateName   string
	RateType   models.RateType
	HourlyRate decimal.Decimal
	Tier       int
	Role       models.CoachRole
}

// Note explains on the line item which rate was used.
func (r Resolution) Note() string {
	switch r.Tier {
	case tierLegacyName:
		return fmt.Sprintf("Rate: %s (%s, matched by legacy name)", r.RateName, r.RateType)
	case tierLeadFallback:
		return fmt.Sprintf("No assistant rate configured, using lead rate: %s (%s)", r.RateName, r.RateType)
	default:
		return fmt.Sprintf("Rate: %s (%s)", r.RateName, r.RateType)
	}
}

const (
	tierGroupTyped = iota + 1
	tierRoleTyped
	tierLegacyName
	tierLeadFallback
)

type rateMatcher func(rate models.CoachingRate, groupName string) bool

type rateTier struct {
	tier  int
	match rateMatcher
}

// groupTyped matches a rate named after the group with the role's type.
func groupTyped(t models.RateType) rateMatcher {
	return func(rate models.CoachingRate, groupName string) bool {
		return rate.RateType == t && rate.Name == groupName
	}
}

func roleTyped(t models.RateType) rateMatcher {
	return func(rate models.CoachingRate, _ string) bool {
		return rate.RateType == t
	}
}

// legacyNamed matches rates created before rates carried a type, whatever
// type they were later given: a rate named after the group, or a rate whose
// name mentions the role.
func legacyNamed(t models.RateType, keyword string) rateMatcher {
	return func(rate models.CoachingRate, groupName string) bool {
		if rate.RateType == t {
			return false
		}
		return rate.Name == groupName || strings.Contains(strings.ToLower(rate.Name), keyword)
	}
}

var leadChain = []rateTier{
	{tier: tierGroupTyped, match: groupTyped(models.RateTypeLead)},
	{tier: tierRoleTyped, match: roleTyped(models.RateTypeLead)},
	{tier: tierLegacyName, match: legacyNamed(models.RateTypeLead, "lead")},
}

var assistantChain = []rateTier{
	{tier: tierGroupTyped, match: groupTyped(models.RateTypeAssistant)},
	{tier: tierRoleTyped, match: roleTyped(models.RateTypeAssistant)},
	{tier: tierLegacyName, match: legacyNamed(models.RateTypeAssistant, "assistant")},
}

// RateCatalog resolves hourly rates for one coach at one club. Rates are
// searched in the order they were supplied, so resolution is deterministic.
type RateCatalog struct {
	rates []models.CoachingRate
}

func NewRateCatalog(rates []models.CoachingRate) *RateCatalog {
	return &RateCatalog{rates: append([]models.CoachingRate(nil), rates...)}
}

func (c *RateCatalog) Len() int { return len(c.rates) }

// Resolve returns the rate to bill a session of groupName in role. An
// assistant with no assistant rate anywhere is paid their lead rate.
// ErrUnresolved is returned when nothing matches.
func (c *RateCatalog) Resolve(groupName string, role models.CoachRole) (Resolution, error) {
	chain := leadChain
	if role == models.RoleAssistant {
		chain = assistantChain
	}

	if res, ok := c.search(chain, groupName); ok {
		res.Role = role
		return res, nil
	}

	if role == models.RoleAssistant {
		if res, ok := c.search(leadChain, groupName); ok {
			res.Tier = tierLeadFallback
			res.Role = role
			return res, nil
		}
	}

	return Resolution{}, fmt.Errorf("%w: %s rate for group %q", ErrUnresolved, role, groupName)
}

func (c *RateCatalog) search(chain []rateTier, groupName string) (Resolution, bool) {
	for _, t := range chain {
		for _, rate := range c.rates {
			if t.match(rate, groupName) {
				return Resolution{
					RateName:   rate.Name,
					RateType:   rate.RateType,
					HourlyRate: rate.HourlyRate,
					Tier:       t.tier,
				}, true
			}
		}
	}
	return Resolution{}, false
}
