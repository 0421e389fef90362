package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version string = BridgeSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// BridgeSemVer is the current version of the bridge.
	// It's the Semantic Version of the software.
	BridgeSemVer = "0.1.0"
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

var (
	// StateProtocol versions the persisted layout of vaults, mint controllers
	// and replay ledgers.
	StateProtocol Protocol = 1

	// SignProtocol versions the bytes relayers sign and the Merkle leaf
	// encoding of cross-chain transactions.
	SignProtocol Protocol = 1
)
