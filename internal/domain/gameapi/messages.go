package gameapi

// User-facing message fragments shared across claim paths. The dispatcher
// matches on MsgCookieExpired to force a mention even for users who opted
// out of them, since an expired credential needs the user's attention.
const (
	MsgCookieExpired  = "Your HoYoLAB cookie has expired, please set a new one"
	MsgNoGameSelected = "No game is selected for daily reward claims"
)
