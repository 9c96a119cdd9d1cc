package config

import "github.com/iliyamo/guest-suite-booking/internal/rules"

// LoadRulesConfig reads the booking policy numbers.  Every value has a
// default matching the community's published rules.
func LoadRulesConfig() rules.Limits {
	d := rules.DefaultLimits()
	lim := rules.Limits{
		MaxConsecutiveNights: envInt("RULES_MAX_CONSECUTIVE_NIGHTS", d.MaxConsecutiveNights),
		MonthlyCap:           envInt("RULES_MONTHLY_CAP", d.MonthlyCap),
		RecentHorizonWeeks:   envInt("RULES_RECENT_HORIZON_WEEKS", d.RecentHorizonWeeks),
		DefaultHorizonWeeks:  envInt("RULES_DEFAULT_HORIZON_WEEKS", d.DefaultHorizonWeeks),
		RecentUsageMonths:    envInt("RULES_RECENT_USAGE_MONTHS", d.RecentUsageMonths),
		HolidayOpenDays:      envInt("RULES_HOLIDAY_OPEN_DAYS", d.HolidayOpenDays),
		HolidayDecisionDays:  envInt("RULES_HOLIDAY_DECISION_DAYS", d.HolidayDecisionDays),
		AlternativeSearch:    envInt("RULES_ALTERNATIVE_SEARCH_DAYS", d.AlternativeSearch),
		NameFallback:         envBool("RULES_NAME_FALLBACK", d.NameFallback),
	}
	if lim.MaxConsecutiveNights < 1 { lim.MaxConsecutiveNights = d.MaxConsecutiveNights }
	if lim.MonthlyCap < 1 { lim.MonthlyCap = d.MonthlyCap }
	if lim.HolidayDecisionDays > lim.HolidayOpenDays { lim.HolidayDecisionDays = lim.HolidayOpenDays }
	if lim.AlternativeSearch < 0 { lim.AlternativeSearch = 0 }
	return lim
}
