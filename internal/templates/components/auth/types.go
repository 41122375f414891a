package auth

type LoginPageData struct {
	CallbackURL string
	HasError    bool
}
