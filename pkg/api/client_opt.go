package api

import (
	"net/http"
)

type authorizationOpt struct {
	value string
}

// Authorization sets an Authorization header built from a scheme prefix and a
// credential, e.g. Authorization("nadeo_v1", "t="+token).
func Authorization(prefix, credential string) *authorizationOpt {
	return &authorizationOpt{value: prefix + " " + credential}
}

func (opt *authorizationOpt) Do(client defaultClient, req *http.Request) {
	req.Header.Add("Authorization", opt.value)
}

type basicAuthOpt struct {
	user     string
	password string
}

func BasicAuth(user, password string) *basicAuthOpt {
	return &basicAuthOpt{user: user, password: password}
}

func (opt *basicAuthOpt) Do(client defaultClient, req *http.Request) {
	req.SetBasicAuth(opt.user, opt.password)
}
