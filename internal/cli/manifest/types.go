package manifest

import pkgmanifest "github.com/pirakansa/appstack/pkg/manifest"

type Config = pkgmanifest.Config
type Binary = pkgmanifest.Binary
type Binaries = pkgmanifest.Binaries
type Repository = pkgmanifest.Repository
type Deploy = pkgmanifest.Deploy
type Paths = pkgmanifest.Paths

const DefaultConfigFile = pkgmanifest.DefaultConfigFile
