// Package facts provides the typed, provenance-tracked fact map that a
// validation session is built on. Fact keys form a closed vocabulary:
// every key a rule or question can reference is registered here, so
// adding one forces review of the consumers.
package facts

// FactKey is a canonical identifier for one piece of case information.
type FactKey string

const (
	KeyServiceDate           FactKey = "service_date"
	KeyExpiryDate            FactKey = "expiry_date"
	KeyEarliestProceedings   FactKey = "earliest_proceedings_date"
	KeyTenancyStartDate      FactKey = "tenancy_start_date"
	KeyFixedTermEndDate      FactKey = "fixed_term_end_date"
	KeyRentAmount            FactKey = "rent_amount"
	KeyRentFrequency         FactKey = "rent_frequency"
	KeyGrounds               FactKey = "grounds"
	KeyArrearsItems          FactKey = "arrears_items"
	KeyArrearsTotal          FactKey = "arrears_total"
	KeyClaimItems            FactKey = "claim_items"
	KeyDepositTaken          FactKey = "deposit_taken"
	KeyDepositProtected      FactKey = "deposit_protected"
	KeyDepositProtectionDate FactKey = "deposit_protection_date"
	KeyPrescribedInfoGiven   FactKey = "prescribed_info_given"
	KeyEPCProvided           FactKey = "epc_provided"
	KeyGasSafetyProvided     FactKey = "gas_safety_provided"
	KeyHowToRentProvided     FactKey = "how_to_rent_provided"
	KeyLicenceRequired       FactKey = "property_licence_required"
	KeyLicenceHeld           FactKey = "property_licence_held"
	KeyLandlordRegistered    FactKey = "landlord_registered"
	KeyLandlordName          FactKey = "landlord_name"
	KeyTenantName            FactKey = "tenant_name"
	KeyPropertyAddress       FactKey = "property_address"
	KeyNoticeForm            FactKey = "notice_form"
	KeyInterestClaimed       FactKey = "interest_claimed"
	KeyInterestRate          FactKey = "interest_rate"
)

// Rent frequency option values.
const (
	FrequencyWeekly      = "weekly"
	FrequencyFortnightly = "fortnightly"
	FrequencyMonthly     = "monthly"
	FrequencyQuarterly   = "quarterly"
	FrequencyYearly      = "yearly"
)

// KeyInfo describes a registered fact key.
type KeyInfo struct {
	Kind    Kind
	Label   string
	Options []string // for KindOption keys
}

// allKeys fixes the registration order; used for deterministic listings.
var allKeys = []FactKey{
	KeyServiceDate,
	KeyExpiryDate,
	KeyEarliestProceedings,
	KeyTenancyStartDate,
	KeyFixedTermEndDate,
	KeyRentAmount,
	KeyRentFrequency,
	KeyGrounds,
	KeyArrearsItems,
	KeyArrearsTotal,
	KeyClaimItems,
	KeyDepositTaken,
	KeyDepositProtected,
	KeyDepositProtectionDate,
	KeyPrescribedInfoGiven,
	KeyEPCProvided,
	KeyGasSafetyProvided,
	KeyHowToRentProvided,
	KeyLicenceRequired,
	KeyLicenceHeld,
	KeyLandlordRegistered,
	KeyLandlordName,
	KeyTenantName,
	KeyPropertyAddress,
	KeyNoticeForm,
	KeyInterestClaimed,
	KeyInterestRate,
}

var registry = map[FactKey]KeyInfo{
	KeyServiceDate:           {Kind: KindDate, Label: "Date the notice was served"},
	KeyExpiryDate:            {Kind: KindDate, Label: "Date the notice expires"},
	KeyEarliestProceedings:   {Kind: KindDate, Label: "Earliest date court proceedings may begin"},
	KeyTenancyStartDate:      {Kind: KindDate, Label: "Date the tenancy started"},
	KeyFixedTermEndDate:      {Kind: KindDate, Label: "Date the fixed term ends"},
	KeyRentAmount:            {Kind: KindCurrency, Label: "Rent amount per period"},
	KeyRentFrequency:         {Kind: KindOption, Label: "How often rent is due", Options: []string{FrequencyWeekly, FrequencyFortnightly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly}},
	KeyGrounds:               {Kind: KindText, Label: "Grounds for possession relied on"},
	KeyArrearsItems:          {Kind: KindLineItems, Label: "Rent arrears schedule"},
	KeyArrearsTotal:          {Kind: KindCurrency, Label: "Total rent arrears"},
	KeyClaimItems:            {Kind: KindLineItems, Label: "Damage and other charge items claimed"},
	KeyDepositTaken:          {Kind: KindBool, Label: "Was a deposit taken"},
	KeyDepositProtected:      {Kind: KindBool, Label: "Is the deposit protected in a government scheme"},
	KeyDepositProtectionDate: {Kind: KindDate, Label: "Date the deposit was protected"},
	KeyPrescribedInfoGiven:   {Kind: KindBool, Label: "Was the prescribed deposit information given"},
	KeyEPCProvided:           {Kind: KindBool, Label: "Was an EPC given to the tenant"},
	KeyGasSafetyProvided:     {Kind: KindBool, Label: "Was a gas safety certificate given to the tenant"},
	KeyHowToRentProvided:     {Kind: KindBool, Label: "Was the How to Rent guide given to the tenant"},
	KeyLicenceRequired:       {Kind: KindBool, Label: "Does the property require a licence"},
	KeyLicenceHeld:           {Kind: KindBool, Label: "Is the required property licence held"},
	KeyLandlordRegistered:    {Kind: KindBool, Label: "Is the landlord registered with Rent Smart Wales"},
	KeyLandlordName:          {Kind: KindText, Label: "Landlord name"},
	KeyTenantName:            {Kind: KindText, Label: "Tenant name"},
	KeyPropertyAddress:       {Kind: KindText, Label: "Property address"},
	KeyNoticeForm:            {Kind: KindOption, Label: "Form used for the notice", Options: []string{"form_3", "form_6a", "rhw16", "rhw17", "other"}},
	KeyInterestClaimed:       {Kind: KindBool, Label: "Is interest claimed"},
	KeyInterestRate:          {Kind: KindText, Label: "Interest rate or statutory basis"},
}

// Known reports whether k is a registered fact key.
func Known(k FactKey) bool {
	_, ok := registry[k]
	return ok
}

// KindOf returns the declared value kind of a registered key.
func KindOf(k FactKey) (Kind, bool) {
	info, ok := registry[k]
	return info.Kind, ok
}

// Info returns the registry entry for a key.
func Info(k FactKey) (KeyInfo, bool) {
	info, ok := registry[k]
	return info, ok
}

// Keys returns all registered keys in registration order.
func Keys() []FactKey {
	out := make([]FactKey, len(allKeys))
	copy(out, allKeys)
	return out
}
