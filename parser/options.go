package parser

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// optionMap is the nested form of dotted options:
// ProvisionedThroughput.ReadCapacityUnits 5 becomes {"ProvisionedThroughput": {"ReadCapacityUnits": "5"}}.
type optionMap map[string]interface{}

// maxOptionDepth is the deepest dotted path that is nested; longer paths are skipped.
const maxOptionDepth = 2

// nestOptions folds dotted options into an optionMap. Paths longer than two
// segments are not rejected: they are reported back as warnings and left out.
func nestOptions(options []*option) (optionMap, []string) {
	out := optionMap{}
	var warnings []string
	for _, opt := range options {
		if len(opt.Path) > maxOptionDepth {
			warnings = append(warnings, fmt.Sprintf("option %s ignored: paths deeper than %d segments are not supported",
				strings.Join(opt.Path, "."), maxOptionDepth))
			continue
		}
		value := optionValueOf(opt.Path[len(opt.Path)-1], opt.Value)
		if len(opt.Path) == 1 {
			out[opt.Path[0]] = value
			continue
		}
		parent, ok := out[opt.Path[0]].(optionMap)
		if !ok {
			parent = optionMap{}
			out[opt.Path[0]] = parent
		}
		parent[opt.Path[1]] = value
	}
	return out, warnings
}

// optionValueOf converts a parsed value. Tags and ReplicationGroup lists carry
// their own element shape; other lists become plain string slices.
func optionValueOf(key string, v *optionValue) interface{} {
	if v.Scalar != nil {
		return unquote(*v.Scalar)
	}
	switch {
	case strings.EqualFold(key, "Tags"):
		tags := make([]interface{}, 0, len(v.List))
		for _, item := range v.List {
			tag := map[string]interface{}{"Key": unquote(item.Key), "Value": ""}
			if item.Value != nil {
				tag["Value"] = unquote(*item.Value)
			}
			tags = append(tags, tag)
		}
		return tags
	case strings.EqualFold(key, "ReplicationGroup"):
		regions := make([]interface{}, 0, len(v.List))
		for _, item := range v.List {
			regions = append(regions, map[string]interface{}{"RegionName": unquote(item.Key)})
		}
		return regions
	}
	values := make([]interface{}, 0, len(v.List))
	for _, item := range v.List {
		values = append(values, unquote(item.Key))
	}
	return values
}

// decodeOptions fills the exported fields of target (a native request struct)
// from the nested options. Keys with no matching field are returned as warnings.
func decodeOptions(options optionMap, target interface{}) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           target,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]interface{}(options)); err != nil {
		return nil, err
	}
	var warnings []string
	for _, key := range md.Unused {
		warnings = append(warnings, fmt.Sprintf("option %s ignored: no such field on %T", key, target))
	}
	return warnings, nil
}
