package params

import (
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// hexBytes decodes a 0x-prefixed YAML scalar. Consensus config files write
// versions unquoted (GENESIS_FORK_VERSION: 0x00000000), which a YAML parser
// would otherwise resolve to an integer.
type hexBytes []byte

func (h *hexBytes) UnmarshalYAML(value *yaml.Node) error {
	b, err := hexutil.Decode(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: %q", value.Line, value.Value)
	}
	*h = b
	return nil
}

// chainConfigFile mirrors the consensus-spec config keys this module reads.
// Absent keys keep the value of the preset named by PRESET_BASE.
type chainConfigFile struct {
	PresetBase                   string   `yaml:"PRESET_BASE"`
	ConfigName                   string   `yaml:"CONFIG_NAME"`
	SyncCommitteeSize            *uint64  `yaml:"SYNC_COMMITTEE_SIZE"`
	SlotsPerEpoch                *uint64  `yaml:"SLOTS_PER_EPOCH"`
	EpochsPerSyncCommitteePeriod *uint64  `yaml:"EPOCHS_PER_SYNC_COMMITTEE_PERIOD"`
	NextSyncCommitteeDepth       *uint64  `yaml:"NEXT_SYNC_COMMITTEE_DEPTH"`
	NextSyncCommitteeIndex       *uint64  `yaml:"NEXT_SYNC_COMMITTEE_INDEX"`
	FinalizedRootDepth           *uint64  `yaml:"FINALIZED_ROOT_DEPTH"`
	FinalizedRootIndex           *uint64  `yaml:"FINALIZED_ROOT_INDEX"`
	DomainSyncCommittee          hexBytes `yaml:"DOMAIN_SYNC_COMMITTEE"`
	GenesisForkVersion           hexBytes `yaml:"GENESIS_FORK_VERSION"`
	GenesisValidatorsRoot        hexBytes `yaml:"GENESIS_VALIDATORS_ROOT"`
}

// LoadChainConfigFile reads a consensus-spec style YAML chain config. Keys the
// verifier does not use are ignored. The result is validated.
func LoadChainConfigFile(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "params: could not read chain config")
	}
	return ParseChainConfig(data)
}

// ParseChainConfig is LoadChainConfigFile over an in-memory document.
func ParseChainConfig(data []byte) (*ChainConfig, error) {
	var file chainConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "params: could not parse chain config")
	}
	conf := MainnetConfig()
	if file.PresetBase != "" {
		base, err := ConfigByName(file.PresetBase)
		if err != nil {
			return nil, err
		}
		conf = base
	}
	conf.ConfigName = "devnet"
	if file.ConfigName != "" {
		conf.ConfigName = file.ConfigName
	}
	setUint(&conf.SyncCommitteeSize, file.SyncCommitteeSize)
	setUint(&conf.SlotsPerEpoch, file.SlotsPerEpoch)
	setUint(&conf.EpochsPerSyncCommitteePeriod, file.EpochsPerSyncCommitteePeriod)
	setUint(&conf.NextSyncCommitteeDepth, file.NextSyncCommitteeDepth)
	setUint(&conf.NextSyncCommitteeIndex, file.NextSyncCommitteeIndex)
	setUint(&conf.FinalizedRootDepth, file.FinalizedRootDepth)
	setUint(&conf.FinalizedRootIndex, file.FinalizedRootIndex)

	if err := setFixed(conf.DomainSyncCommittee[:], file.DomainSyncCommittee, "DOMAIN_SYNC_COMMITTEE"); err != nil {
		return nil, err
	}
	if err := setFixed(conf.GenesisForkVersion[:], file.GenesisForkVersion, "GENESIS_FORK_VERSION"); err != nil {
		return nil, err
	}
	if err := setFixed(conf.GenesisValidatorsRoot[:], file.GenesisValidatorsRoot, "GENESIS_VALIDATORS_ROOT"); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setUint(dst *uint64, v *uint64) {
	if v != nil {
		*dst = *v
	}
}

func setFixed(dst []byte, v hexBytes, key string) error {
	if v == nil {
		return nil
	}
	if len(v) != len(dst) {
		return errors.Wrapf(ErrInvalidConfig, "%s must be %d bytes, got %d", key, len(dst), len(v))
	}
	copy(dst, v)
	return nil
}
