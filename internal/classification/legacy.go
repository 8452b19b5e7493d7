package classification

// legacyMapping translates the old short item types to scheme codes. The
// translation is lossy: several old types collapse into one code and the
// reverse direction cannot be recovered.
var legacyMapping = map[string]string{
	"FG":  CodeProduction, // finished good
	"SF":  CodeProduction, // semi-finished
	"MOD": CodeAssembly,
	"PT":  CodeAssembly, // part; some sites treat these as purchased
	"RM":  CodePurchase, // raw material
	"MR":  CodePurchase, // merchandise
	"CS":  CodePurchase, // consumable
	"PKG": CodePurchase,
}

// LegacyDefault is returned for any unrecognised legacy type.
const LegacyDefault = CodePurchase

// MapLegacy translates an old item type. It is total: unknown input maps to
// LegacyDefault, so it must only be used for migrations, never for validation.
func MapLegacy(code string) string {
	if mapped, ok := legacyMapping[code]; ok {
		return mapped
	}
	return LegacyDefault
}

// LegacyMapping returns a copy of the translation table.
func LegacyMapping() map[string]string {
	out := make(map[string]string, len(legacyMapping))
	for k, v := range legacyMapping {
		out[k] = v
	}
	return out
}
