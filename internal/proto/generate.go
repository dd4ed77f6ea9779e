// Package proto holds the gRPC contract with the NLU sidecar.
//
// The generated Go bindings live under internal/proto/nlu and are produced
// with:
//
//	protoc --go_out=. --go_opt=paths=source_relative \
//	       --go-grpc_out=. --go-grpc_opt=paths=source_relative \
//	       nlu.proto
package proto

//go:generate protoc --go_out=nlu --go_opt=paths=source_relative --go-grpc_out=nlu --go-grpc_opt=paths=source_relative nlu.proto
