package features

// Feature keys. They are the contract between extraction, filtering,
// scoring, explanation and the learned scorer's representation.
const (
	// education
	KeyCandidateHighestDegreeLevel = "candidate_highest_degree_level"
	KeyRequiredMinDegreeLevel      = "required_min_degree_level"
	KeyHasRequiredDegreeLevel      = "has_required_degree_level"
	KeyDegreeLevelGap              = "degree_level_gap"
	KeyFieldMatchScore             = "field_match_score"

	// experience
	KeyTotalYearsExperience            = "total_years_experience"
	KeyRequiredYearsExperience         = "required_years_experience"
	KeyExperienceApproval              = "experience_approval"
	KeyTitleSimilarityScore            = "title_similarity_score"
	KeyYearsExperienceInRequiredTitles = "years_experience_in_required_titles"
	KeyRecentRoleMatch                 = "recent_role_match"

	// languages
	KeyNumMandatoryLanguages          = "num_mandatory_languages"
	KeyNumPreferredLanguages          = "num_preferred_languages"
	KeyMandatoryLanguageCoverageRatio = "mandatory_language_coverage_ratio"
	KeyAllMandatoryLanguagesOK        = "all_mandatory_languages_ok"
	KeyPreferredLanguageCoverageRatio = "preferred_language_coverage_ratio"
	KeyAvgLanguageGap                 = "avg_language_gap"

	// skills
	KeyNumRequiredSkills           = "num_required_skills"
	KeySkillOverlapCount           = "skill_overlap_count"
	KeySkillOverlapRatio           = "skill_overlap_ratio"
	KeyWeightedSkillMatchScore     = "weighted_skill_match_score"
	KeyMandatorySkillCoverageRatio = "mandatory_skill_coverage_ratio"
	KeySkillEmbeddingSimilarity    = "skill_embedding_similarity"

	// location
	KeyLocationRelevant = "location_relevant"
	KeyLocationMatch    = "location_match"
	KeyGeodesicDistance = "geodesic_distance"

	// mandatory criteria
	KeyNumMandatoryCriteriaPassed = "num_mandatory_criteria_passed"
	KeyMandatoryCriteriaTotal     = "mandatory_criteria_total"
	KeyMandatoryCriteriaPassRatio = "mandatory_criteria_pass_ratio"
	KeyMandatoryCriteriaAllPass   = "mandatory_criteria_all_pass"

	// global
	KeyGlobalTextSimilarity = "global_text_similarity"
)
