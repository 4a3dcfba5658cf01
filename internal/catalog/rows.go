package catalog

// Provider is the one-row metadata record each adapter emits.
type Provider struct {
	Name       string `vot:"provider_name"`
	URL        string `vot:"provider_url"`
	Bibcode    string `vot:"provider_bibcode"`
	AccessDate string `vot:"provider_access"`
}

// Source is a literature or provider citation backing a datum.
// (Ref, Provider) is unique within the sources table; ID is assigned at
// merge time and stays stable for the build.
type Source struct {
	ID       int64  `vot:"source_id"`
	Ref      string `vot:"ref"`
	Provider string `vot:"provider_name"`
}

// Object is a physical entity: star, planet, disk, or system.
// IDs is the pipe-delimited union of identifier aliases.
type Object struct {
	ID     int64  `vot:"object_id"`
	Type   string `vot:"type"`
	MainID string `vot:"main_id"`
	IDs    string `vot:"ids"`
}

// Ident is a single identifier alias for an object. MainID carries the
// identity as a string until the merger assigns integer object ids.
type Ident struct {
	ObjectIDRef int64  `vot:"object_idref"`
	MainID      string `vot:"main_id"`
	Alias       string `vot:"id"`
	Ref         string `vot:"id_ref"`
	SourceIDRef int64  `vot:"id_source_idref"`
}

// HLink is a directed child-to-parent membership edge between objects.
// Membership is an integer likelihood, NullInt when unknown.
type HLink struct {
	ChildIDRef   int64  `vot:"child_object_idref"`
	ParentIDRef  int64  `vot:"parent_object_idref"`
	ChildMainID  string `vot:"child_main_id"`
	ParentMainID string `vot:"parent_main_id"`
	Membership   int64  `vot:"membership"`
	Ref          string `vot:"h_link_ref"`
	SourceIDRef  int64  `vot:"h_link_source_idref"`
}

// StarBasic is the one-row-per-star (or system) summary record. The mes_*
// columns hold the best-parameter picks after selection.
type StarBasic struct {
	ObjectIDRef int64  `vot:"object_idref"`
	MainID      string `vot:"main_id"`

	RA             float64 `vot:"coo_ra"`
	Dec            float64 `vot:"coo_dec"`
	CooErrAngle    float64 `vot:"coo_err_angle"`
	CooErrMaj      float64 `vot:"coo_err_maj"`
	CooErrMin      float64 `vot:"coo_err_min"`
	CooQual        string  `vot:"coo_qual"`
	CooRef         string  `vot:"coo_ref"`
	CooSourceIDRef int64   `vot:"coo_source_idref"`

	GalL           float64 `vot:"coo_gal_l"`
	GalB           float64 `vot:"coo_gal_b"`
	GalErrAngle    float64 `vot:"coo_gal_err_angle"`
	GalErrMaj      float64 `vot:"coo_gal_err_maj"`
	GalErrMin      float64 `vot:"coo_gal_err_min"`
	GalQual        string  `vot:"coo_gal_qual"`
	GalRef         string  `vot:"coo_gal_ref"`
	GalSourceIDRef int64   `vot:"coo_gal_source_idref"`

	Plx            float64 `vot:"plx_value"`
	PlxErr         float64 `vot:"plx_err"`
	PlxQual        string  `vot:"plx_qual"`
	PlxRef         string  `vot:"plx_ref"`
	PlxSourceIDRef int64   `vot:"plx_source_idref"`

	Dist            float64 `vot:"dist_st_value"`
	DistErr         float64 `vot:"dist_st_err"`
	DistQual        string  `vot:"dist_st_qual"`
	DistRef         string  `vot:"dist_st_ref"`
	DistSourceIDRef int64   `vot:"dist_st_source_idref"`

	SpType           string `vot:"sptype_string"`
	SpTypeRef        string `vot:"sptype_ref"`
	SpTypeSourceRef  int64  `vot:"sptype_source_idref"`
	ClassTemp        string `vot:"class_temp"`
	ClassTempNr      string `vot:"class_temp_nr"`
	ClassLum         string `vot:"class_lum"`
	ClassRef         string `vot:"class_ref"`
	ClassSourceIDRef int64  `vot:"class_source_idref"`

	MagI           float64 `vot:"mag_i_value"`
	MagIRef        string  `vot:"mag_i_ref"`
	MagISourceRef  int64   `vot:"mag_i_source_idref"`
	MagJ           float64 `vot:"mag_j_value"`
	MagJRef        string  `vot:"mag_j_ref"`
	MagJSourceRef  int64   `vot:"mag_j_source_idref"`
	MagK           float64 `vot:"mag_k_value"`
	MagKRef        string  `vot:"mag_k_ref"`
	MagKSourceRef  int64   `vot:"mag_k_source_idref"`

	Teff            float64 `vot:"teff_st_value"`
	TeffErr         float64 `vot:"teff_st_err"`
	TeffQual        string  `vot:"teff_st_qual"`
	TeffRef         string  `vot:"teff_st_ref"`
	TeffSourceIDRef int64   `vot:"teff_st_source_idref"`

	Radius            float64 `vot:"radius_st_value"`
	RadiusErr         float64 `vot:"radius_st_err"`
	RadiusQual        string  `vot:"radius_st_qual"`
	RadiusRef         string  `vot:"radius_st_ref"`
	RadiusSourceIDRef int64   `vot:"radius_st_source_idref"`

	Mass            float64 `vot:"mass_st_value"`
	MassErr         float64 `vot:"mass_st_err"`
	MassQual        string  `vot:"mass_st_qual"`
	MassRef         string  `vot:"mass_st_ref"`
	MassSourceIDRef int64   `vot:"mass_st_source_idref"`

	BinaryFlag        string `vot:"binary_flag"`
	BinaryQual        string `vot:"binary_qual"`
	BinaryRef         string `vot:"binary_ref"`
	BinarySourceIDRef int64  `vot:"binary_source_idref"`

	SepAng            float64 `vot:"sep_ang_value"`
	SepAngErr         float64 `vot:"sep_ang_err"`
	SepAngObsDate     int64   `vot:"sep_ang_obs_date"`
	SepAngQual        string  `vot:"sep_ang_qual"`
	SepAngRef         string  `vot:"sep_ang_ref"`
	SepAngSourceIDRef int64   `vot:"sep_ang_source_idref"`
}

// PlanetBasic is the one-row-per-planet summary record.
type PlanetBasic struct {
	ObjectIDRef int64  `vot:"object_idref"`
	MainID      string `vot:"main_id"`

	Mass            float64 `vot:"mass_pl_value"`
	MassErr         float64 `vot:"mass_pl_err"`
	MassRel         string  `vot:"mass_pl_rel"`
	MassQual        string  `vot:"mass_pl_qual"`
	MassSiniFlag    string  `vot:"mass_pl_sini_flag"`
	MassRef         string  `vot:"mass_pl_ref"`
	MassSourceIDRef int64   `vot:"mass_pl_source_idref"`
}

// DiskBasic is the one-row-per-disk summary record with the black-body
// radius of the infrared excess.
type DiskBasic struct {
	ObjectIDRef int64  `vot:"object_idref"`
	MainID      string `vot:"main_id"`

	RDisk            float64 `vot:"rdisk_bb_value"`
	RDiskErr         float64 `vot:"rdisk_bb_err"`
	RDiskRel         string  `vot:"rdisk_bb_rel"`
	RDiskQual        string  `vot:"rdisk_bb_qual"`
	RDiskRef         string  `vot:"rdisk_bb_ref"`
	RDiskSourceIDRef int64   `vot:"rdisk_bb_source_idref"`
}

// MesTeff is one raw effective-temperature measurement.
type MesTeff struct {
	ObjectIDRef int64   `vot:"object_idref"`
	MainID      string  `vot:"main_id"`
	Value       float64 `vot:"teff_st_value"`
	Err         float64 `vot:"teff_st_err"`
	Qual        string  `vot:"teff_st_qual"`
	Ref         string  `vot:"teff_st_ref"`
	SourceIDRef int64   `vot:"teff_st_source_idref"`
}

// MesRadius is one raw stellar-radius measurement.
type MesRadius struct {
	ObjectIDRef int64   `vot:"object_idref"`
	MainID      string  `vot:"main_id"`
	Value       float64 `vot:"radius_st_value"`
	Err         float64 `vot:"radius_st_err"`
	Qual        string  `vot:"radius_st_qual"`
	Ref         string  `vot:"radius_st_ref"`
	SourceIDRef int64   `vot:"radius_st_source_idref"`
}

// MesMass is one raw stellar-mass measurement.
type MesMass struct {
	ObjectIDRef int64   `vot:"object_idref"`
	MainID      string  `vot:"main_id"`
	Value       float64 `vot:"mass_st_value"`
	Err         float64 `vot:"mass_st_err"`
	Qual        string  `vot:"mass_st_qual"`
	Ref         string  `vot:"mass_st_ref"`
	SourceIDRef int64   `vot:"mass_st_source_idref"`
}

// MesMassPl is one raw planetary-mass measurement. SiniFlag marks msini
// rows; Rel is the relation of the value to the truth (=, <, >).
type MesMassPl struct {
	ObjectIDRef int64   `vot:"object_idref"`
	MainID      string  `vot:"main_id"`
	Value       float64 `vot:"mass_pl_value"`
	Err         float64 `vot:"mass_pl_err"`
	Rel         string  `vot:"mass_pl_rel"`
	Qual        string  `vot:"mass_pl_qual"`
	SiniFlag    string  `vot:"mass_pl_sini_flag"`
	Ref         string  `vot:"mass_pl_ref"`
	SourceIDRef int64   `vot:"mass_pl_source_idref"`
}

// MesBinary is one raw multiplicity observation.
type MesBinary struct {
	ObjectIDRef int64  `vot:"object_idref"`
	MainID      string `vot:"main_id"`
	Flag        string `vot:"binary_flag"`
	Qual        string `vot:"binary_qual"`
	Ref         string `vot:"binary_ref"`
	SourceIDRef int64  `vot:"binary_source_idref"`
}

// MesSepAng is one raw angular-separation observation of a multiple system.
type MesSepAng struct {
	ObjectIDRef int64   `vot:"object_idref"`
	MainID      string  `vot:"main_id"`
	Value       float64 `vot:"sep_ang_value"`
	Err         float64 `vot:"sep_ang_err"`
	ObsDate     int64   `vot:"sep_ang_obs_date"`
	Qual        string  `vot:"sep_ang_qual"`
	Ref         string  `vot:"sep_ang_ref"`
	SourceIDRef int64   `vot:"sep_ang_source_idref"`
}
