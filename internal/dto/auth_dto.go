package dto

type SignUpForm struct {
	Username        string `form:"username" binding:"required,max=50"`
	Password        string `form:"password" binding:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}
