package service

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// toConnectError maps a domain error to its Connect code and attaches a
// google.protobuf.Struct detail holding the numeric code, reason and
// metadata. Missing records become NotFound and anything else Internal.
func toConnectError(err error) *connect.Error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		if errors.Is(err, storage.ErrNotFound) {
			return connect.NewError(connect.CodeNotFound, err)
		}
		return connect.NewError(connect.CodeInternal, err)
	}

	cerr := connect.NewError(appErr.Code.ConnectCode(), err)

	metadata := make(map[string]any, len(appErr.Metadata))
	for k, v := range appErr.Metadata {
		metadata[k] = v
	}
	st, stErr := structpb.NewStruct(map[string]any{
		"code":     float64(appErr.Code),
		"reason":   appErr.Code.String(),
		"message":  appErr.Message,
		"metadata": metadata,
	})
	if stErr != nil {
		return cerr
	}
	if detail, dErr := connect.NewErrorDetail(st); dErr == nil {
		cerr.AddDetail(detail)
	}
	return cerr
}

// FromConnectError turns an RPC error carrying a domain detail back into an
// *apperrors.Error, so clients can use errors.Is with the sentinels. Other
// errors are returned unchanged.
func FromConnectError(err error) error {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return err
	}

	for _, detail := range cerr.Details() {
		msg, vErr := detail.Value()
		if vErr != nil {
			continue
		}
		st, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		fields := st.GetFields()
		code, ok := fields["code"]
		if !ok {
			continue
		}

		out := apperrors.Wrap(apperrors.Code(code.GetNumberValue()), fields["message"].GetStringValue(), cerr)
		for k, v := range fields["metadata"].GetStructValue().GetFields() {
			out = out.With(k, v.GetStringValue())
		}
		return out
	}
	return err
}
