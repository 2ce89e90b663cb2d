package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/season --output domain/season --outpkg seasonmock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Archive --dir ../domain/rawdata --output domain/rawdata --outpkg rawdatamock --filename archive_mock.go
