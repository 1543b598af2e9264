package api

import (
	"net/http"

	"github.com/openbuilders/campaign-api/internal/helpers"
	"github.com/openbuilders/campaign-api/internal/types"
	"github.com/openbuilders/campaign-api/internal/validation"
)

func (s *Server) SMSDispatchHandler(w http.ResponseWriter, r *http.Request) (
	interface{}, error) {

	account, err := s.auth.Authenticate(r)
	if err != nil {
		return nil, err
	}

	var req validation.SMSRequest
	values, err := bindRequest(r, &req)
	if err != nil {
		return nil, err
	}
	s.logRawRequest(r, account, values)

	sub, err := s.validator.SMS(r.Context(), req)
	if err != nil {
		return nil, err
	}

	return s.submit(r, account, sub)
}

func (s *Server) ViberDispatchHandler(w http.ResponseWriter, r *http.Request) (
	interface{}, error) {

	account, err := s.auth.Authenticate(r)
	if err != nil {
		return nil, err
	}

	var req validation.ViberRequest
	values, err := bindRequest(r, &req)
	if err != nil {
		return nil, err
	}
	s.logRawRequest(r, account, values)

	sub, err := s.validator.Viber(r.Context(), req)
	if err != nil {
		return nil, err
	}

	return s.submit(r, account, sub)
}

func (s *Server) submit(r *http.Request, account types.Account, sub types.Submission) (
	interface{}, error) {

	outcome, err := s.submitter.Submit(r.Context(), account, sub)
	if err != nil {
		return nil, err
	}

	resp := DispatchCreatedResponse{
		Status:  statusSuccess,
		Code:    CodeCreated,
		ID:      outcome.DispatchID,
		Message: dispatchMessages[sub.Channel][CodeCreated],
	}

	s.log.Info("create success", "uuid", helpers.RequestID(r.Context()), "response", resp)

	return resp, nil
}

// logRawRequest writes the request to the audit trail. Recipients are logged
// as a fingerprint only.
func (s *Server) logRawRequest(r *http.Request, account types.Account, values map[string]string) {
	logged := make(map[string]string, len(values))
	for key, value := range values {
		logged[key] = value
	}
	if recipients, ok := logged["recipients"]; ok {
		logged["recipients"] = "#" + helpers.TinyHash(recipients)
	}

	s.log.Info("create raw request",
		"uuid", helpers.RequestID(r.Context()),
		"account", account.ID,
		"path", r.URL.Path,
		"request", logged,
	)
}
