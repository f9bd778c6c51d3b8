// Package slug turns titles into URL-safe identifiers.
//
// Latin diacritics are folded to ASCII with golang.org/x/text before the
// remaining characters are filtered:
//
//	slug.Make("Knee Replacement: Costs & Recovery") // "knee-replacement-costs-recovery"
//	slug.Make("Café Ayurvéda")                      // "cafe-ayurveda"
//
// Scripts without an ASCII form (Bengali, Arabic) produce an empty slug; callers
// supply their own fallback.
package slug
