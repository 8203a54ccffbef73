// Package seed decodes the static taxonomy, synonym groups and curated
// quotes that ship with lumen. The default data set is embedded; a
// custom file in the same TOML layout can be loaded with Load.
package seed
