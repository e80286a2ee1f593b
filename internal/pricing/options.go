package pricing

// PriceKey is a code from the closed set of priced options and fees.
type PriceKey string

// Fees and base rates.
const (
	KeyStitchingStandard PriceKey = "STITCHING_STANDARD"
	KeyStitchingDesign   PriceKey = "STITCHING_DESIGN"
	KeyDesignStyle       PriceKey = "STY_DESIGN"
	KeyLine              PriceKey = "STY_LINE"
	KeyHomeDelivery      PriceKey = "HOME_DELIVERY"
	KeyExpress           PriceKey = "EXPRESS_SURCHARGE"
)

// Collar types.
const (
	CollarStandard PriceKey = "COL_STANDARD"
	CollarJapanese PriceKey = "COL_JAPANESE"
	CollarDown     PriceKey = "COL_DOWN_COLLAR"
	CollarStand    PriceKey = "COL_STAND_COLLAR"
)

// Collar buttons.
const (
	ButtonTabbagi       PriceKey = "COL_TABBAGI"
	ButtonAraviZarrar   PriceKey = "COL_ARAVI_ZARRAR"
	ButtonZarrarTabbagi PriceKey = "COL_ZARRAR_TABBAGI"
)

// Jabzour types.
const (
	JabzourBainMurabba  PriceKey = "JAB_BAIN_MURABBA"
	JabzourMagfiMurabba PriceKey = "JAB_MAGFI_MURABBA"
	JabzourShaab        PriceKey = "JAB_SHAAB"
	JabzourZipper       PriceKey = "JAB_ZIPPER"
)

// Front pocket types.
const (
	PocketMudawwar   PriceKey = "FRO_MUDAWWAR_FRONT_POCKET"
	PocketMurabba    PriceKey = "FRO_MURABBA_FRONT_POCKET"
	PocketMuthallath PriceKey = "FRO_MUTHALLATH_FRONT_POCKET"
)

// Cuff types.
const (
	CuffDoubleGumsha    PriceKey = "CUF_DOUBLE_GUMSHA"
	CuffMurabbaKabak    PriceKey = "CUF_MURABBA_KABAK"
	CuffMuthallathKabak PriceKey = "CUF_MUTHALLATH_KABAK"
	CuffMudawarKabak    PriceKey = "CUF_MUDAWAR_KABAK"
	CuffNone            PriceKey = "CUF_NO_CUFF"
)

var knownKeys = map[PriceKey]struct{}{
	KeyStitchingStandard: {}, KeyStitchingDesign: {}, KeyDesignStyle: {}, KeyLine: {},
	KeyHomeDelivery: {}, KeyExpress: {},
	CollarStandard: {}, CollarJapanese: {}, CollarDown: {}, CollarStand: {},
	ButtonTabbagi: {}, ButtonAraviZarrar: {}, ButtonZarrarTabbagi: {},
	JabzourBainMurabba: {}, JabzourMagfiMurabba: {}, JabzourShaab: {}, JabzourZipper: {},
	PocketMudawwar: {}, PocketMurabba: {}, PocketMuthallath: {},
	CuffDoubleGumsha: {}, CuffMurabbaKabak: {}, CuffMuthallathKabak: {}, CuffMudawarKabak: {}, CuffNone: {},
}

// Known reports whether k belongs to the priced option set.
func (k PriceKey) Known() bool {
	_, ok := knownKeys[k]
	return ok
}

// Keys returns every known price key.
func Keys() []PriceKey {
	keys := make([]PriceKey, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	return keys
}
