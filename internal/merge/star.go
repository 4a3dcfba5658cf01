package merge

import "github.com/life-td/targetdb-cli/internal/catalog"

// resolveStarRefs fills every <para>_source_idref column of a provider
// star row from its <para>_ref string within the provider's namespace.
func resolveStarRefs(s *catalog.StarBasic, src map[sourceKey]int64, provider string) {
	s.CooSourceIDRef = resolveSource(src, provider, s.CooRef)
	s.GalSourceIDRef = resolveSource(src, provider, s.GalRef)
	s.PlxSourceIDRef = resolveSource(src, provider, s.PlxRef)
	s.DistSourceIDRef = resolveSource(src, provider, s.DistRef)
	s.SpTypeSourceRef = resolveSource(src, provider, s.SpTypeRef)
	s.ClassSourceIDRef = resolveSource(src, provider, s.ClassRef)
	s.MagISourceRef = resolveSource(src, provider, s.MagIRef)
	s.MagJSourceRef = resolveSource(src, provider, s.MagJRef)
	s.MagKSourceRef = resolveSource(src, provider, s.MagKRef)
	s.TeffSourceIDRef = resolveSource(src, provider, s.TeffRef)
	s.RadiusSourceIDRef = resolveSource(src, provider, s.RadiusRef)
	s.MassSourceIDRef = resolveSource(src, provider, s.MassRef)
	s.BinarySourceIDRef = resolveSource(src, provider, s.BinaryRef)
	s.SepAngSourceIDRef = resolveSource(src, provider, s.SepAngRef)
}

// overlayStarBasic copies value groups from src into dst where dst still
// holds the null sentinel. Groups move together with their error, quality,
// reference, and source id columns so provenance stays attached.
func overlayStarBasic(dst, src *catalog.StarBasic) {
	if catalog.IsNullFloat(dst.RA) && !catalog.IsNullFloat(src.RA) {
		dst.RA, dst.Dec = src.RA, src.Dec
		dst.CooErrAngle, dst.CooErrMaj, dst.CooErrMin = src.CooErrAngle, src.CooErrMaj, src.CooErrMin
		dst.CooQual, dst.CooRef, dst.CooSourceIDRef = src.CooQual, src.CooRef, src.CooSourceIDRef
	}
	if catalog.IsNullFloat(dst.GalL) && !catalog.IsNullFloat(src.GalL) {
		dst.GalL, dst.GalB = src.GalL, src.GalB
		dst.GalErrAngle, dst.GalErrMaj, dst.GalErrMin = src.GalErrAngle, src.GalErrMaj, src.GalErrMin
		dst.GalQual, dst.GalRef, dst.GalSourceIDRef = src.GalQual, src.GalRef, src.GalSourceIDRef
	}
	if catalog.IsNullFloat(dst.Plx) && !catalog.IsNullFloat(src.Plx) {
		dst.Plx, dst.PlxErr = src.Plx, src.PlxErr
		dst.PlxQual, dst.PlxRef, dst.PlxSourceIDRef = src.PlxQual, src.PlxRef, src.PlxSourceIDRef
	}
	if catalog.IsNullFloat(dst.Dist) && !catalog.IsNullFloat(src.Dist) {
		dst.Dist, dst.DistErr = src.Dist, src.DistErr
		dst.DistQual, dst.DistRef, dst.DistSourceIDRef = src.DistQual, src.DistRef, src.DistSourceIDRef
	}
	if catalog.IsNullText(dst.SpType) && !catalog.IsNullText(src.SpType) {
		dst.SpType, dst.SpTypeRef, dst.SpTypeSourceRef = src.SpType, src.SpTypeRef, src.SpTypeSourceRef
	}
	if catalog.IsNullText(dst.ClassTemp) && !catalog.IsNullText(src.ClassTemp) {
		dst.ClassTemp, dst.ClassTempNr, dst.ClassLum = src.ClassTemp, src.ClassTempNr, src.ClassLum
		dst.ClassRef, dst.ClassSourceIDRef = src.ClassRef, src.ClassSourceIDRef
	}
	if catalog.IsNullFloat(dst.MagI) && !catalog.IsNullFloat(src.MagI) {
		dst.MagI, dst.MagIRef, dst.MagISourceRef = src.MagI, src.MagIRef, src.MagISourceRef
	}
	if catalog.IsNullFloat(dst.MagJ) && !catalog.IsNullFloat(src.MagJ) {
		dst.MagJ, dst.MagJRef, dst.MagJSourceRef = src.MagJ, src.MagJRef, src.MagJSourceRef
	}
	if catalog.IsNullFloat(dst.MagK) && !catalog.IsNullFloat(src.MagK) {
		dst.MagK, dst.MagKRef, dst.MagKSourceRef = src.MagK, src.MagKRef, src.MagKSourceRef
	}
	if catalog.IsNullFloat(dst.Teff) && !catalog.IsNullFloat(src.Teff) {
		dst.Teff, dst.TeffErr, dst.TeffQual = src.Teff, src.TeffErr, src.TeffQual
		dst.TeffRef, dst.TeffSourceIDRef = src.TeffRef, src.TeffSourceIDRef
	}
	if catalog.IsNullFloat(dst.Radius) && !catalog.IsNullFloat(src.Radius) {
		dst.Radius, dst.RadiusErr, dst.RadiusQual = src.Radius, src.RadiusErr, src.RadiusQual
		dst.RadiusRef, dst.RadiusSourceIDRef = src.RadiusRef, src.RadiusSourceIDRef
	}
	if catalog.IsNullFloat(dst.Mass) && !catalog.IsNullFloat(src.Mass) {
		dst.Mass, dst.MassErr, dst.MassQual = src.Mass, src.MassErr, src.MassQual
		dst.MassRef, dst.MassSourceIDRef = src.MassRef, src.MassSourceIDRef
	}
	if catalog.IsNullText(dst.BinaryFlag) && !catalog.IsNullText(src.BinaryFlag) {
		dst.BinaryFlag, dst.BinaryQual = src.BinaryFlag, src.BinaryQual
		dst.BinaryRef, dst.BinarySourceIDRef = src.BinaryRef, src.BinarySourceIDRef
	}
	if catalog.IsNullFloat(dst.SepAng) && !catalog.IsNullFloat(src.SepAng) {
		dst.SepAng, dst.SepAngErr, dst.SepAngObsDate = src.SepAng, src.SepAngErr, src.SepAngObsDate
		dst.SepAngQual, dst.SepAngRef, dst.SepAngSourceIDRef = src.SepAngQual, src.SepAngRef, src.SepAngSourceIDRef
	}
}
