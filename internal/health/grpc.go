package health

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/gin-gonic/gin"
)

// ServiceName is the gRPC health service name reported alongside the overall status.
const ServiceName = "departure.v1.DepartureAlerts"

type grpcChecker struct {
	checker *Checker
}

func (g *grpcChecker) Check(ctx context.Context, req *grpchealth.CheckRequest) (*grpchealth.CheckResponse, error) {
	if req.Service != "" && req.Service != ServiceName {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("unknown service %q", req.Service))
	}

	if g.checker.Check(ctx).Status != StatusHealthy {
		return &grpchealth.CheckResponse{Status: grpchealth.StatusNotServing}, nil
	}

	return &grpchealth.CheckResponse{Status: grpchealth.StatusServing}, nil
}

// RegisterGRPC mounts the gRPC/Connect health protocol on r, backed by the same
// dependency checks as the readiness probe.
func (c *Checker) RegisterGRPC(r gin.IRouter) string {
	path, handler := grpchealth.NewHandler(&grpcChecker{checker: c})
	r.Any(path+":method", gin.WrapH(handler))
	return path
}
