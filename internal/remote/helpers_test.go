package remote_test

import "github.com/existflow/toedo/internal/sharetoken"

func gateAddress(id int64) sharetoken.Address {
	return sharetoken.Address{WorkspaceID: id}
}
