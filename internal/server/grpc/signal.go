package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// headerSignal tells the client its session ended by sending a response header.
type headerSignal struct{}

func (headerSignal) EndSession(ctx context.Context) error {
	return grpc.SetHeader(ctx, metadata.Pairs(common.SessionEndedHeaderName, "true"))
}
