package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// shown for unknown addresses and wrong passwords alike
var ErrLogin = errors.New("wrong email address or password")

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post" style="max-width: 20rem; margin: auto;">
		<div class="form-group">
			<label>E-Mail</label>
			<input type="email" class="form-control" name="email" value="{{ .Email }}" required autofocus>
		</div>
		<div class="form-group">
			<label>Password</label>
			<input type="password" class="form-control" name="password" required>
		</div>
		<button type="submit" class="btn btn-primary btn-block" name="login">Login</button>
	</form>`)

type loginData struct {
	*context
	Email string
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if ctx.LoggedIn() {
		ctx.SeeOther("/")
		return nil
	}

	var data = loginData{
		context: ctx,
	}

	if req.Method == http.MethodPost {

		data.Email = req.PostFormValue("email")

		if err := ctx.Login(data.Email, req.PostFormValue("password")); err == nil {
			ctx.SeeOther("/")
			return nil
		}

		// the entered address survives the round trip, the password does not
		ctx.Danger(ErrLogin)
	}

	return loginTmpl.Execute(w, &data)
}
