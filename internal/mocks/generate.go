package mocks

// Mock generation directives. Run `make mocks` or `go generate ./internal/mocks/` to regenerate.

//go:generate go run go.uber.org/mock/mockgen -source=../core/directory.go -destination=mock_directory.go -package=mocks
//go:generate go run go.uber.org/mock/mockgen -source=../core/oauth.go -destination=mock_oauth.go -package=mocks
//go:generate go run go.uber.org/mock/mockgen -source=../core/storage.go -destination=mock_storage.go -package=mocks
//go:generate go run go.uber.org/mock/mockgen -source=../core/metrics.go -destination=mock_metrics.go -package=mocks
