package models

// Query parameters of the dashboard endpoints. Handlers prefill them with the
// configured defaults; default tags only cover what is still empty.

type OutrightRequest struct {
	Issuer   string `query:"issuer" json:"issuer" default:"US" validate:"required,issuer"`
	Maturity string `query:"maturity" json:"maturity" default:"10Y" validate:"required,maturity"`
}

type CreditSpreadRequest struct {
	Issuer1  string `query:"issuer1" json:"issuer1" default:"US" validate:"required,issuer"`
	Issuer2  string `query:"issuer2" json:"issuer2" default:"DE" validate:"required,issuer"`
	Maturity string `query:"maturity" json:"maturity" default:"10Y" validate:"required,maturity"`
}

type CurveSpreadRequest struct {
	Issuer    string `query:"issuer" json:"issuer" default:"US" validate:"required,issuer"`
	Maturity1 string `query:"maturity1" json:"maturity1" default:"10Y" validate:"required,maturity"`
	Maturity2 string `query:"maturity2" json:"maturity2" default:"2Y" validate:"required,maturity"`
}

type FlyRequest struct {
	Issuer string `query:"issuer" json:"issuer" default:"US" validate:"required,issuer"`
	Short  string `query:"short" json:"short" default:"2Y" validate:"required,maturity"`
	Mid    string `query:"mid" json:"mid" default:"5Y" validate:"required,maturity"`
	Long   string `query:"long" json:"long" default:"10Y" validate:"required,maturity"`
}

type RateCurveRequest struct {
	Start string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}
