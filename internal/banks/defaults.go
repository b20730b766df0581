package banks

// Bank pairs a filename code with the bank's display name.
type Bank struct {
	Code string
	Name string
}

// DefaultBanks returns the built-in code table for Montenegrin banks.
func DefaultBanks() []Bank {
	return []Bank{
		{Code: "adk", Name: "Addiko Banka"},
		{Code: "adr", Name: "Adriatic Banka"},
		{Code: "ckb", Name: "Crnogorska Komercijalna Banka"},
		{Code: "ers", Name: "Erste Banka"},
		{Code: "hip", Name: "Hipotekarna Banka"},
		{Code: "lov", Name: "Lovćen Banka"},
		{Code: "nlb", Name: "NLB Banka"},
		{Code: "prv", Name: "Prva Banka Crne Gore"},
		{Code: "ucb", Name: "Universal Capital Banka"},
		{Code: "zap", Name: "Zapad Banka"},
		{Code: "zir", Name: "Ziraat Banka"},
	}
}
