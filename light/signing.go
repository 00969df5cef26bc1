package light

import (
	"github.com/eth2030/lightcheck/params"
)

// ComputeForkDataRoot returns hash_tree_root(ForkData{version, validatorsRoot}).
func ComputeForkDataRoot(version Version, validatorsRoot Root) (Root, error) {
	fd := &ForkData{CurrentVersion: version, GenesisValidatorsRoot: validatorsRoot}
	return fd.HashTreeRoot()
}

// ComputeDomain returns domainType ∥ forkDataRoot[:28]. A nil forkVersion
// selects the chain's genesis fork version.
func ComputeDomain(domainType [4]byte, forkVersion *Version, validatorsRoot Root, cfg *params.ChainConfig) (Domain, error) {
	version := Version(cfg.GenesisForkVersion)
	if forkVersion != nil {
		version = *forkVersion
	}
	forkDataRoot, err := ComputeForkDataRoot(version, validatorsRoot)
	if err != nil {
		return Domain{}, err
	}
	var domain Domain
	copy(domain[:4], domainType[:])
	copy(domain[4:], forkDataRoot[:28])
	return domain, nil
}

// ComputeSigningRoot returns hash_tree_root(SigningData{root(header), domain}).
func ComputeSigningRoot(header *BeaconBlockHeader, domain Domain) (Root, error) {
	objectRoot, err := header.HashTreeRoot()
	if err != nil {
		return Root{}, err
	}
	sd := &SigningData{ObjectRoot: objectRoot, Domain: domain}
	return sd.HashTreeRoot()
}
