package mocks

//go:generate mockery --name LedgerStore --srcpkg github.com/saleslens-lab/saleslens/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
