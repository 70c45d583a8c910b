package promptstore

import "github.com/kirillkom/fichepro/internal/core/domain"

func defaultTemplates() map[string]domain.PromptTemplate {
	return map[string]domain.PromptTemplate{
		domain.PromptProductDescription: {
			ID:   domain.PromptProductDescription,
			Name: "Description produit",
			Body: `Tu es un rédacteur e-commerce expert du marché français.

Rédige une description marketing complète pour le produit suivant.

Produit : {product_name}
Catégorie : {product_category}
Description de base : {product_description}
Caractéristiques techniques :
{technical_specs}
Mots-clés : {keywords}

{tone_instructions}
{persona_instructions}

{seo_guide}
{competitor_insights}
{rag_context}

Exigences :
- Structure le texte avec des titres et des paragraphes courts.
- Mets en avant les bénéfices concrets avant les caractéristiques.
- Intègre naturellement les mots-clés imposés.
{seo_suggestions_instruction}`,
		},
		domain.PromptCompetitorAnalysis: {
			ID:   domain.PromptCompetitorAnalysis,
			Name: "Analyse concurrentielle",
			Body: `Tu analyses des pages concurrentes pour le produit "{product_name}" (catégorie : {product_category}).

Contenu des pages concurrentes :
{competitor_content}

Réponds uniquement avec un objet JSON de la forme :
{"key_features": [], "unique_selling_points": [], "common_specifications": [], "content_structure": "", "seo_keywords": []}`,
		},
		domain.PromptToneAnalysis: {
			ID:   domain.PromptToneAnalysis,
			Name: "Analyse de ton",
			Body: `Analyse le ton rédactionnel du texte suivant :

{sample_text}

Réponds uniquement avec un objet JSON de la forme :
{"tone": "", "register": "", "audience": "", "traits": [], "sample_vocabulary": []}`,
		},
		domain.PromptChainGeneration: {
			ID:   domain.PromptChainGeneration,
			Name: "Chaîne - génération",
			Body: `Rédige une première version de description produit pour "{product_name}".

Contexte produit :
{product_context}

{tone_instructions}`,
		},
		domain.PromptChainEvaluation: {
			ID:   domain.PromptChainEvaluation,
			Name: "Chaîne - évaluation",
			Body: `Évalue la description produit suivante selon six critères notés sur 10 :
technical_accuracy, tone_style, seo_optimization, structure, persuasion, differentiation.

Description :
{description}

Contexte produit :
{product_context}

Réponds uniquement avec un objet JSON de la forme :
{"technical_accuracy": 0, "tone_style": 0, "seo_optimization": 0, "structure": 0, "persuasion": 0, "differentiation": 0, "justifications": {}, "improvement_points": []}`,
		},
		domain.PromptChainImprovement: {
			ID:   domain.PromptChainImprovement,
			Name: "Chaîne - amélioration",
			Body: `Améliore la description produit suivante en corrigeant les points faibles listés.

Description actuelle :
{description}

Points à améliorer :
{improvement_points}

Contexte produit :
{product_context}

Rends uniquement la description améliorée, sans commentaire.`,
		},
		domain.PromptChainVerification: {
			ID:   domain.PromptChainVerification,
			Name: "Chaîne - vérification",
			Body: `Vérifie que la description améliorée répond bien aux points suivants :
{improvement_points}

Description améliorée :
{description}

Résume en quelques lignes ce qui a été corrigé et ce qui reste perfectible.`,
		},
	}
}
