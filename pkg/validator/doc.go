// Package validator provides composable validation rules that produce
// translatable errors.
//
// A Rule pairs a check with the ValidationError reported when the check
// fails. Apply evaluates rules in order and keeps only the first failure per
// field, so a user sees one actionable message per input:
//
//	err := validator.Apply(
//	    validator.MinLenString("name", name, 2),
//	    validator.MaxLenString("name", name, 100),
//	    validator.ValidEmail("email", email),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    for _, e := range errs {
//	        fmt.Println(e.Field, e.TranslationKey, e.Args())
//	    }
//	}
//
// Lengths are counted in runes. Every rule carries a default translation key
// that callers can override with Rule.WithKey when a field needs its own
// wording.
package validator
