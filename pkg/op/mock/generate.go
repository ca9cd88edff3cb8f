package mock

//go:generate go install github.com/golang/mock/mockgen@v1.6.0
//go:generate mockgen -package mock -destination ./client.mock.go github.com/auric-id/auric/pkg/op Client
//go:generate mockgen -package mock -destination ./evaluator.mock.go github.com/auric-id/auric/pkg/op AccessEvaluator
