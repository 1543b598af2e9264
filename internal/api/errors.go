package api

import (
	"net/http"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/types"
)

type APIErrorCode string

const (
	CodeCreated           APIErrorCode = "s00"
	CodeUndefined         APIErrorCode = "e00"
	CodeUserNotFound      APIErrorCode = "e01"
	CodeInvalidRequest    APIErrorCode = "e02"
	CodeNotEnoughMoney    APIErrorCode = "e03"
	CodeInvalidSender     APIErrorCode = "e04"
	CodeInvalidSMSSender  APIErrorCode = "e05"
	CodeMissingDispatchID APIErrorCode = "e02"
	CodeDispatchNotFound  APIErrorCode = "e03"
)

var dispatchMessages = map[types.Channel]map[APIErrorCode]string{
	types.ChannelSMS: {
		CodeUndefined:      "Undefined error",
		CodeUserNotFound:   "User not found",
		CodeInvalidRequest: "Incorrect data structure",
		CodeNotEnoughMoney: "Not enough money",
		CodeInvalidSender:  "Incorrect sender name",
		CodeCreated:        "SMS dispatch was created",
	},
	types.ChannelViber: {
		CodeUndefined:        "Undefined error",
		CodeUserNotFound:     "User not found",
		CodeInvalidRequest:   "Incorrect data structure",
		CodeNotEnoughMoney:   "Not enough money",
		CodeInvalidSender:    "Incorrect Viber sender name",
		CodeInvalidSMSSender: "Incorrect SMS sender name",
		CodeCreated:          "Viber dispatch was created",
	},
}

var statsMessages = map[APIErrorCode]string{
	CodeUndefined:         "Undefined error",
	CodeUserNotFound:      "User not found",
	CodeMissingDispatchID: "Missing dispatch ID",
	CodeDispatchNotFound:  "Not found dispatch",
}

// dispatchCode renders an error kind of a dispatch request. A code the channel
// does not define falls back to e00.
func dispatchCode(channel types.Channel, kind apperrors.Kind) (APIErrorCode, string) {
	var code APIErrorCode

	switch kind {
	case apperrors.KindUnauthenticated:
		code = CodeUserNotFound
	case apperrors.KindInvalidRequest:
		code = CodeInvalidRequest
	case apperrors.KindInsufficientFunds:
		code = CodeNotEnoughMoney
	case apperrors.KindInvalidSender:
		code = CodeInvalidSender
	case apperrors.KindInvalidFallbackSender:
		code = CodeInvalidSMSSender
	default:
		code = CodeUndefined
	}

	message, ok := dispatchMessages[channel][code]
	if !ok {
		code = CodeUndefined
		message = dispatchMessages[channel][code]
	}

	return code, message
}

func statsCode(kind apperrors.Kind) (APIErrorCode, string) {
	var code APIErrorCode

	switch kind {
	case apperrors.KindUnauthenticated:
		code = CodeUserNotFound
	case apperrors.KindMissingDispatchID:
		code = CodeMissingDispatchID
	case apperrors.KindDispatchNotFound:
		code = CodeDispatchNotFound
	default:
		code = CodeUndefined
	}

	return code, statsMessages[code]
}

func httpStatus(kind apperrors.Kind) int {
	if kind == apperrors.KindUnauthenticated {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}
