package httpx

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middlewares. The first middleware is the
// outermost, so Chain(h, a, b) runs a, then b, then h.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Stage inspects a request and either admits it (possibly annotated with a
// new context) or rejects it with a complete response.
type Stage func(*http.Request) Decision

// Rejection is the response written when a stage refuses a request. A nil
// Body writes no body at all.
type Rejection struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decision is the outcome of a Stage.
type Decision struct {
	req       *http.Request
	rejection *Rejection
}

// Admit lets the request through. Pass the request returned by
// r.WithContext to hand annotations to later stages and the handler.
func Admit(r *http.Request) Decision {
	return Decision{req: r}
}

// Reject stops the request with rej.
func Reject(rej Rejection) Decision {
	return Decision{rejection: &rej}
}

// Admitted reports whether the decision lets the request continue.
func (d Decision) Admitted() bool { return d.rejection == nil }

// Request returns the (possibly annotated) admitted request.
func (d Decision) Request() *http.Request { return d.req }

// Rejection returns the rejection, or nil when admitted.
func (d Decision) Rejection() *Rejection { return d.rejection }

// Gate runs stages in order in front of next. The first rejection is
// written and nothing after it runs, including next.
func Gate(next http.Handler, stages ...Stage) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, stage := range stages {
			d := stage(r)
			if !d.Admitted() {
				d.rejection.write(w)
				return
			}
			if d.req != nil {
				r = d.req
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Stages adapts a list of stages to a Middleware for use with Chain.
func Stages(stages ...Stage) Middleware {
	return func(next http.Handler) http.Handler {
		return Gate(next, stages...)
	}
}

func (rej *Rejection) write(w http.ResponseWriter) {
	for k, vs := range rej.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(rej.Status)
	if rej.Body != nil {
		_, _ = w.Write(rej.Body)
	}
}
